package hunt

import (
	"strings"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

const (
	PrimaryMinProficiency = 7
	PrimaryLimit          = 5
)

// PrimaryQueries builds one query per primary skill (profile order, at most
// five with proficiency >= 7) plus a combination of the first two.
func PrimaryQueries(skills opportunity.Skills) []string {
	primary := skills.Primary(PrimaryMinProficiency, PrimaryLimit)

	queries := make([]string, 0, len(primary)+1)
	for _, s := range primary {
		queries = append(queries, s.Name)
	}
	if len(primary) >= 2 {
		queries = append(queries, primary[0].Name+" "+primary[1].Name)
	}
	return queries
}

// Rule maps skill keywords to a platform role or category.
type Rule struct {
	Target   string
	Keywords []string
}

// MapSkills returns the distinct targets whose keywords appear in any skill
// name, in rule order.
func MapSkills(skills opportunity.Skills, rules []Rule) []string {
	var targets []string
	for _, rule := range rules {
		if matchesAny(skills, rule.Keywords) {
			targets = append(targets, rule.Target)
		}
	}
	return targets
}

func matchesAny(skills opportunity.Skills, keywords []string) bool {
	for _, s := range skills {
		name := strings.ToLower(s.Name)
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return true
			}
		}
	}
	return false
}

package upwork

import (
	"regexp"
	"strconv"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/scoring"
)

const (
	weightSkills   = 0.40
	weightPay      = 0.25
	weightClient   = 0.20
	weightWorkload = 0.10
	weightBase     = 0.05

	// Upwork does not expose win rates; assume a fixed success probability.
	baseSuccess = 0.75

	bigSpender   = 10000
	goodHireRate = 0.8
	defaultHours = 10
)

var firstNumber = regexp.MustCompile(`\d+`)

func (a *Adapter) Score(o *opportunity.Opportunity, skills opportunity.Skills) *scoring.Card {
	return scoring.NewCard(Platform).
		Add("skills", weightSkills, scoring.SkillMatch(o.RequiredSkills, skills)).
		AddFunc("pay", weightPay, func() (float64, error) {
			if o.PayMin == nil {
				return 0, nil
			}
			return scoring.Linear(*o.PayMin, a.cfg.MinHourlyRate, a.cfg.TargetHourlyRate)
		}).
		AddFunc("client", weightClient, func() (float64, error) {
			return clientScore(o.ClientInfo)
		}).
		Add("workload", weightWorkload, workloadScore(o.Metadata["workload"], a.cfg.MaxHoursPerWeek)).
		Add("base", weightBase, baseSuccess)
}

// clientScore treats missing signals, or a missing client, as the weakest value.
func clientScore(c *opportunity.ClientInfo) (float64, error) {
	if c == nil {
		c = &opportunity.ClientInfo{}
	}

	var rating, spent, hireRate float64
	if c.Rating != nil {
		rating = *c.Rating
	}
	if c.TotalSpent != nil {
		spent = *c.TotalSpent
	}
	if c.HireRate != nil {
		hireRate = *c.HireRate
	}

	return scoring.Counterpart(rating, spent > bigSpender, hireRate > goodHireRate)
}

// workloadScore parses strings like "Less than 10 hrs/week".
func workloadScore(workload any, maxHours float64) float64 {
	text, _ := workload.(string)
	if text == "" {
		return 0.75
	}

	hours := float64(defaultHours)
	if match := firstNumber.FindString(text); match != "" {
		if n, err := strconv.Atoi(match); err == nil {
			hours = float64(n)
		}
	}

	switch {
	case hours <= maxHours:
		return 1
	case hours > maxHours*2:
		return 0
	default:
		return 1 - (hours-maxHours)/maxHours
	}
}

package opportunity

import (
	"sort"
	"strings"
)

const (
	MinProficiency = 1
	MaxProficiency = 10
)

type Evidence struct {
	Source      string `json:"source" yaml:"source"`
	Proficiency int    `json:"proficiency" yaml:"proficiency"`
	Detail      string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

type Skill struct {
	Name          string     `json:"name" yaml:"name"`
	Proficiency   int        `json:"proficiency" yaml:"proficiency"`
	Category      string     `json:"category,omitempty" yaml:"category,omitempty"`
	MarketDemand  float64    `json:"market_demand,omitempty" yaml:"market_demand,omitempty"`
	AvgHourlyRate float64    `json:"avg_hourly_rate,omitempty" yaml:"avg_hourly_rate,omitempty"`
	Evidence      []Evidence `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Key is the case-insensitive identity of a skill.
func (s Skill) Key() string {
	return strings.ToLower(strings.TrimSpace(s.Name))
}

// Skills is an ordered skill profile. Order matters: query construction
// takes the first matching entries.
type Skills []Skill

func (s Skills) Names() []string {
	names := make([]string, 0, len(s))
	for _, skill := range s {
		names = append(names, skill.Name)
	}
	return names
}

// Primary returns up to limit skills with proficiency of at least minProficiency,
// keeping profile order.
func (s Skills) Primary(minProficiency, limit int) Skills {
	primary := make(Skills, 0, limit)
	for _, skill := range s {
		if len(primary) == limit {
			break
		}
		if skill.Proficiency >= minProficiency {
			primary = append(primary, skill)
		}
	}
	return primary
}

// Merge combines the profile with other, keyed by the case-insensitive name.
// On conflict the higher proficiency wins and evidence from both sides is kept.
// New skills are appended in the order they appear.
func (s Skills) Merge(other Skills) Skills {
	merged := make(Skills, 0, len(s)+len(other))
	index := make(map[string]int, len(s)+len(other))

	add := func(skill Skill) {
		key := skill.Key()
		if key == "" {
			return
		}
		idx, ok := index[key]
		if !ok {
			skill.Evidence = append([]Evidence(nil), skill.Evidence...)
			index[key] = len(merged)
			merged = append(merged, skill)
			return
		}

		existing := &merged[idx]
		if skill.Proficiency > existing.Proficiency {
			existing.Proficiency = skill.Proficiency
		}
		if existing.Category == "" {
			existing.Category = skill.Category
		}
		if skill.MarketDemand > existing.MarketDemand {
			existing.MarketDemand = skill.MarketDemand
		}
		if skill.AvgHourlyRate > existing.AvgHourlyRate {
			existing.AvgHourlyRate = skill.AvgHourlyRate
		}
		existing.Evidence = append(existing.Evidence, skill.Evidence...)
	}

	for _, skill := range s {
		add(skill)
	}
	for _, skill := range other {
		add(skill)
	}

	return merged
}

// SortByProficiency orders skills by proficiency then market demand, both
// descending. Equal skills keep their relative order.
func (s Skills) SortByProficiency() {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Proficiency != s[j].Proficiency {
			return s[i].Proficiency > s[j].Proficiency
		}
		return s[i].MarketDemand > s[j].MarketDemand
	})
}

// Clamp keeps proficiency inside the 1..10 scale.
func (s Skill) Clamp() Skill {
	switch {
	case s.Proficiency < MinProficiency:
		s.Proficiency = MinProficiency
	case s.Proficiency > MaxProficiency:
		s.Proficiency = MaxProficiency
	}
	return s
}

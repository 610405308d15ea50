package angellist

import (
	"fmt"
	"slices"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/scoring"
)

const (
	weightSkills  = 0.35
	weightEquity  = 0.30
	weightStartup = 0.20
	weightSalary  = 0.15

	noRequirements = 0.6
	// Equity percent worth a full score before the stage multiplier.
	fullEquity = 0.5
	// Salary scored below the floor; equity may make up for it.
	lowSalary = 0.3
)

var (
	stageMultipliers = map[string]float64{
		"seed":     1.5,
		"series-a": 1.3,
		"series-b": 1.1,
		"series-c": 1.0,
		"series-d": 0.9,
	}
	stageStability = map[string]float64{
		"series-a": 0.1,
		"series-b": 0.2,
		"series-c": 0.3,
	}
)

func (a *Adapter) Score(o *opportunity.Opportunity, skills opportunity.Skills) *scoring.Card {
	info := o.ClientInfo
	if info == nil {
		info = &opportunity.ClientInfo{}
	}

	return scoring.NewCard(Platform).
		Add("skills", weightSkills, scoring.SkillMatchOr(o.RequiredSkills, skills, noRequirements)).
		AddFunc("equity", weightEquity, func() (float64, error) {
			return equityScore(o.Metadata, info.Stage)
		}).
		Add("startup", weightStartup, startupScore(info)).
		Add("salary", weightSalary, a.salaryScore(o))
}

func equityScore(meta map[string]any, stage string) (float64, error) {
	equity := 0.0
	for _, key := range []string{"equity_max", "equity_min"} {
		v, ok := meta[key]
		if !ok {
			continue
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("unexpected %s %v", key, v)
		}
		if f < 0 {
			return 0, fmt.Errorf("negative %s %v", key, f)
		}
		if f > 0 {
			equity = f
			break
		}
	}

	multiplier, ok := stageMultipliers[stage]
	if !ok {
		multiplier = 1
	}
	return min(equity/fullEquity*multiplier, 1), nil
}

func startupScore(info *opportunity.ClientInfo) float64 {
	score := 0.5
	if info.Funding != nil {
		if *info.Funding > 1_000_000 {
			score += 0.2
		}
		if *info.Funding > 10_000_000 {
			score += 0.1
		}
	}
	if len(info.Investors) > 0 {
		score += 0.1
	}
	score += stageStability[info.Stage]
	return min(score, 1)
}

// salaryScore prefers the maximum. A listing without salary is scored at the
// floor.
func (a *Adapter) salaryScore(o *opportunity.Opportunity) float64 {
	floor := a.cfg.MinSalary
	target := floor * 1.3

	salary := floor
	switch {
	case o.PayMax != nil && *o.PayMax > 0:
		salary = *o.PayMax
	case o.PayMin != nil && *o.PayMin > 0:
		salary = *o.PayMin
	}

	switch {
	case salary < floor:
		return lowSalary
	case salary >= target:
		return 1
	default:
		return 0.5 + (salary-floor)/(target-floor)*0.5
	}
}

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// StageRecommendation lists the funding stages that suit a candidate.
func StageRecommendation(yearsExperience int, risk RiskTolerance) []string {
	switch {
	case yearsExperience < 3 || risk == RiskLow:
		return []string{"series-b", "series-c", "series-d"}
	case yearsExperience >= 7 && risk == RiskHigh:
		return []string{"seed", "series-a"}
	default:
		return []string{"series-a", "series-b"}
	}
}

// Annotate records the recommended stages and whether the startup is in one.
func (a *Adapter) Annotate(o *opportunity.Opportunity) {
	if o.Metadata == nil {
		o.Metadata = make(map[string]any)
	}
	stages := StageRecommendation(a.cfg.YearsExperience, a.cfg.RiskTolerance)
	o.Metadata["recommended_stages"] = stages
	if o.ClientInfo != nil {
		o.Metadata["stage_fit"] = slices.Contains(stages, o.ClientInfo.Stage)
	}
}

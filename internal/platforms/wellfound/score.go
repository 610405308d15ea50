package wellfound

import (
	"strings"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/scoring"
)

const (
	weightSkills = 0.35
	weightEquity = 0.25
	weightStage  = 0.20
	weightSalary = 0.20
)

// Rough post-money valuation per stage, used to price equity.
var valuations = []struct {
	stage string
	value float64
}{
	{"seed", 5_000_000},
	{"series a", 20_000_000},
	{"series b", 75_000_000},
	{"series c+", 300_000_000},
}

func (a *Adapter) Score(o *opportunity.Opportunity, skills opportunity.Skills) *scoring.Card {
	return scoring.NewCard(Platform).
		Add("skills", weightSkills, scoring.TextSkillMatch(o.Title+" "+o.Description, skills)).
		Add("equity", weightEquity, equityScore(equityOf(o))).
		Add("stage", weightStage, stageScore(stageOf(o))).
		Add("salary", weightSalary, salaryScore(averagePay(o)))
}

func equityOf(o *opportunity.Opportunity) string {
	equity, _ := o.Metadata["equity"].(string)
	return equity
}

func stageOf(o *opportunity.Opportunity) string {
	if o.ClientInfo == nil {
		return ""
	}
	return strings.ToLower(o.ClientInfo.Stage)
}

func averagePay(o *opportunity.Opportunity) float64 {
	var sum float64
	if o.PayMin != nil {
		sum += *o.PayMin
	}
	if o.PayMax != nil {
		sum += *o.PayMax
	}
	return sum / 2
}

func equityScore(equity string) float64 {
	if equity == "" {
		return 0.3
	}
	p, ok := equityPercent(equity)
	if !ok {
		return 0.5
	}
	switch {
	case p >= 1:
		return 1
	case p >= 0.5:
		return 0.85
	case p >= 0.25:
		return 0.7
	case p >= 0.1:
		return 0.6
	default:
		return 0.5
	}
}

// stageScore favours early stages for their equity upside.
func stageScore(stage string) float64 {
	switch {
	case strings.Contains(stage, "series a"):
		return 0.85
	case strings.Contains(stage, "series b"):
		return 0.75
	case strings.Contains(stage, "seed"):
		return 0.9
	case strings.Contains(stage, "series c+"):
		return 0.6
	default:
		return 0.7
	}
}

func salaryScore(avg float64) float64 {
	switch {
	case avg >= 150000:
		return 1
	case avg >= 120000:
		return 0.85
	case avg >= 100000:
		return 0.75
	case avg >= 80000:
		return 0.65
	default:
		return 0.5
	}
}

type Compensation struct {
	BaseSalary        float64 `json:"base_salary"`
	EquityAnnualValue float64 `json:"equity_annual_value"`
	EquityTotalValue  float64 `json:"equity_total_value"`
	TotalAnnual       float64 `json:"total_annual"`
}

// TotalCompensation estimates the yearly value of salary plus equity vested
// over the given number of years. Equity is priced at the first percent of
// the range against a stage valuation; unknown stages count as seed.
func TotalCompensation(o *opportunity.Opportunity, years int) Compensation {
	c := Compensation{BaseSalary: averagePay(o)}
	c.TotalAnnual = c.BaseSalary

	p, ok := equityPercent(equityOf(o))
	if !ok || years <= 0 {
		return c
	}

	valuation := valuations[0].value
	stage := stageOf(o)
	for _, v := range valuations {
		if strings.Contains(stage, v.stage) {
			valuation = v.value
			break
		}
	}

	c.EquityTotalValue = valuation * p / 100
	c.EquityAnnualValue = c.EquityTotalValue / float64(years)
	c.TotalAnnual += c.EquityAnnualValue
	return c
}

// Annotate stores the four-year compensation estimate.
func (a *Adapter) Annotate(o *opportunity.Opportunity) {
	if o.Metadata == nil {
		o.Metadata = make(map[string]any)
	}
	o.Metadata["total_compensation"] = TotalCompensation(o, vestingYears)
}

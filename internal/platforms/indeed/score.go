package indeed

import (
	"errors"
	"fmt"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/scoring"
)

const (
	weightSkills   = 0.40
	weightSalary   = 0.30
	weightCompany  = 0.15
	weightLocation = 0.10
	weightBenefits = 0.05

	// Benefits are not published in search results.
	neutralBenefits = 0.5
)

var errNoSalary = errors.New("salary range is missing")

func (a *Adapter) Score(o *opportunity.Opportunity, skills opportunity.Skills) *scoring.Card {
	return scoring.NewCard(Platform).
		Add("skills", weightSkills, scoring.ExactSkillMatch(o.RequiredSkills, skills)).
		AddFunc("salary", weightSalary, func() (float64, error) {
			if o.PayMin == nil || o.PayMax == nil {
				return 0, errNoSalary
			}
			return scoring.Linear((*o.PayMin+*o.PayMax)/2, a.cfg.MinSalary, a.cfg.MinSalary*2)
		}).
		AddFunc("company", weightCompany, func() (float64, error) {
			return companyScore(o.ClientInfo)
		}).
		Add("location", weightLocation, locationScore(o.Metadata["remote_type"], a.cfg.RemoteOnly)).
		Add("benefits", weightBenefits, neutralBenefits)
}

func companyScore(c *opportunity.ClientInfo) (float64, error) {
	if c == nil || c.Rating == nil || *c.Rating == 0 {
		return 0.5, nil
	}
	if *c.Rating < 0 || *c.Rating > 5 {
		return 0, fmt.Errorf("%w: got %v", scoring.ErrBadRating, *c.Rating)
	}
	return *c.Rating / 5, nil
}

func locationScore(remoteType any, remoteOnly bool) float64 {
	rt, _ := remoteType.(string)

	if remoteOnly {
		if RemoteType(rt) == Remote {
			return 1
		}
		return 0
	}

	switch RemoteType(rt) {
	case Remote:
		return 1
	case Hybrid:
		return 0.7
	default:
		return 0.5
	}
}

package freelancer

import (
	"fmt"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/scoring"
)

const (
	weightSkills      = 0.40
	weightBudget      = 0.25
	weightClient      = 0.20
	weightCompetition = 0.10
	weightScope       = 0.05

	experiencedClient = 10
)

func (a *Adapter) Score(o *opportunity.Opportunity, skills opportunity.Skills) *scoring.Card {
	return scoring.NewCard(Platform).
		Add("skills", weightSkills, scoring.SkillMatch(o.RequiredSkills, skills)).
		AddFunc("budget", weightBudget, func() (float64, error) {
			return scoring.Linear(budget(o), a.cfg.MinBudget, a.cfg.TargetBudget)
		}).
		AddFunc("client", weightClient, func() (float64, error) {
			return clientScore(o.ClientInfo)
		}).
		AddFunc("competition", weightCompetition, func() (float64, error) {
			bids, err := bidCount(o)
			if err != nil {
				return 0, err
			}
			return scoring.Competition(float64(bids), a.cfg.MaxCompetition)
		}).
		Add("scope", weightScope, scoring.Scope(o.Description))
}

// budget prefers the maximum, then the minimum.
func budget(o *opportunity.Opportunity) float64 {
	switch {
	case o.PayMax != nil && *o.PayMax > 0:
		return *o.PayMax
	case o.PayMin != nil:
		return *o.PayMin
	default:
		return 0
	}
}

func clientScore(c *opportunity.ClientInfo) (float64, error) {
	if c == nil {
		return 0.5, nil
	}

	var rating float64
	if c.Rating != nil {
		rating = *c.Rating
	}
	completed := 0
	if c.ProjectsCompleted != nil {
		completed = *c.ProjectsCompleted
	}
	verified := c.Verified != nil && *c.Verified

	return scoring.Counterpart(rating, completed > experiencedClient, verified)
}

func bidCount(o *opportunity.Opportunity) (int, error) {
	switch v := o.Metadata["bid_count"].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("unexpected bid count %v", v)
	}
}

// BidLevel is the expected competition on a project.
type BidLevel string

const (
	BidLow    BidLevel = "low"
	BidMedium BidLevel = "medium"
	BidHigh   BidLevel = "high"
)

type BidStrategy struct {
	Level          BidLevel `json:"level"`
	Recommendation string   `json:"recommendation"`
	Confidence     string   `json:"confidence"`
	Tip            string   `json:"tip"`
}

// RecommendBid suggests how aggressively to bid given the current bid count.
func RecommendBid(o *opportunity.Opportunity) BidStrategy {
	bids, _ := bidCount(o)
	amount := fmt.Sprintf("%.0f", budget(o))

	switch {
	case bids <= 5:
		return BidStrategy{
			Level:          BidLow,
			Recommendation: "Bid 80-90% of " + amount,
			Confidence:     "high",
			Tip:            "Premium positioning, you can win with quality",
		}
	case bids <= 15:
		return BidStrategy{
			Level:          BidMedium,
			Recommendation: "Bid 70-80% of " + amount,
			Confidence:     "medium",
			Tip:            "Competitive, emphasize quality and speed",
		}
	default:
		return BidStrategy{
			Level:          BidHigh,
			Recommendation: "Consider skipping or bid 60-70% of " + amount,
			Confidence:     "low",
			Tip:            "High competition, only bid on a perfect match",
		}
	}
}

// Annotate stores the bid recommendation in the metadata.
func (a *Adapter) Annotate(o *opportunity.Opportunity) {
	if o.Metadata == nil {
		o.Metadata = make(map[string]any)
	}
	o.Metadata["bid_strategy"] = RecommendBid(o)
}

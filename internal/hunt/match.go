package hunt

import (
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/metrics"
	"github.com/spigell/gig-hunter/internal/opportunity"
)

const DefaultThreshold = 0.65

// Match scores every listing, keeps those at or above threshold and orders
// them by descending score. Equal scores keep their scan order.
// Failed sub-scores are logged and counted.
func Match(a Adapter, list *opportunity.Opportunities, skills opportunity.Skills, threshold float64, m *metrics.Metrics, logger *zap.Logger) *opportunity.Opportunities {
	if logger == nil {
		logger = zap.NewNop()
	}

	matched := &opportunity.Opportunities{}
	if list == nil {
		return matched
	}

	for _, o := range list.Items {
		card := a.Score(o, skills)
		for _, err := range card.Errors() {
			m.ScoringError(err.Platform, err.Part)
			logger.Warn("sub-score failed, counted as zero",
				zap.String("external_id", o.ExternalID),
				zap.String("part", err.Part),
				zap.Error(err.Err),
			)
		}

		score := card.Total()
		if score < threshold {
			continue
		}
		o.MatchScore = score
		matched.Append(o)
	}

	sort.SliceStable(matched.Items, func(i, j int) bool {
		return matched.Items[i].MatchScore > matched.Items[j].MatchScore
	})

	return matched
}

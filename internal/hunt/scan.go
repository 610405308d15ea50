package hunt

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/metrics"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/ratelimit"
)

// Fetch runs a single query against a platform.
type Fetch func(ctx context.Context, query string) ([]*opportunity.Opportunity, error)

// Scanner issues queries one at a time through the limiter.
type Scanner struct {
	Platform string
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewScanner(platform string, limiter *ratelimit.Limiter, m *metrics.Metrics, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		Platform: platform,
		Limiter:  limiter,
		Metrics:  m,
		logger:   logger,
	}
}

// Scan runs every query and deduplicates the combined result by external id.
// Query failures are logged and skipped; only a done context aborts.
func (s *Scanner) Scan(ctx context.Context, queries []string, fetch Fetch) (*opportunity.Opportunities, error) {
	result := &opportunity.Opportunities{}
	if len(queries) == 0 {
		s.logger.Debug("nothing to scan", zap.Error(ErrNoQueries))
		return result, nil
	}

	for _, query := range queries {
		if err := s.Limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		items, err := fetch(ctx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.Metrics.Query(s.Platform, false)
			s.logger.Warn("query failed, skipping", zap.Error(Unavailable(query, err)))
			continue
		}

		s.Metrics.Query(s.Platform, true)
		s.logger.Debug("query done", zap.String("query", query), zap.Int("count", len(items)))
		result.Append(items...)
	}

	if dropped := result.Dedup(); len(dropped) > 0 {
		s.logger.Debug("dropped duplicates", zap.Strings("external_ids", dropped))
	}

	s.logger.Info("scan finished", zap.Int("queries", len(queries)), zap.Int("unique", result.Len()))
	return result, nil
}

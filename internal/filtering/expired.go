package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

type expiredFilter struct {
	toggle
}

// NewExpired creates a filter that removes opportunities whose expiry is in the past.
func NewExpired() Filter {
	return &expiredFilter{}
}

func (f *expiredFilter) Name() string { return "expired" }

func (f *expiredFilter) Validate() error { return nil }

func (f *expiredFilter) Apply(_ context.Context, deps Deps, v *opportunity.Opportunities) (*opportunity.Opportunities, Step, error) {
	initial := v.Len()
	now := deps.now()

	excluded := v.Filter(func(o *opportunity.Opportunity) bool {
		return !o.Expired(now)
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding expired opportunities",
			zap.Strings("excluded_opportunities", excluded),
			zap.Int("opportunities_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *expiredFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

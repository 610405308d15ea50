package hunt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/gig-hunter/internal/filtering"
	"github.com/spigell/gig-hunter/internal/logger"
	"github.com/spigell/gig-hunter/internal/metrics"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/ratelimit"
	"github.com/spigell/gig-hunter/internal/storage"
)

// Runner drives one adapter through scan, filter, match, persist and log.
// It is the only writer of hunt logs.
type Runner struct {
	Opportunities storage.OpportunityStore
	Logs          storage.HuntLogStore
	Filters       []filtering.Filter
	Threshold     float64
	Metrics       *metrics.Metrics
	Clock         ratelimit.Clock
	NewID         func() string

	logger *zap.Logger
}

func NewRunner(logger *zap.Logger, opportunities storage.OpportunityStore, logs storage.HuntLogStore) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Opportunities: opportunities,
		Logs:          logs,
		Threshold:     DefaultThreshold,
		Clock:         ratelimit.RealClock(),
		NewID:         uuid.NewString,
		logger:        logger,
	}
}

// Run executes one hunt. On success it returns the matched opportunities in
// descending score order. Any failure is recorded as one hunt log row and
// returned to the caller.
func (r *Runner) Run(ctx context.Context, a Adapter, skills opportunity.Skills) (*opportunity.Opportunities, error) {
	log := logger.ForHunt(r.logger, a.Name(), a.Platform())

	entry := &opportunity.HuntLog{
		ID:        r.NewID(),
		HuntName:  a.Name(),
		Platform:  a.Platform(),
		StartedAt: r.Clock.Now().UTC(),
	}

	log.Info("scanning")
	scanned, err := a.Scan(ctx, skills)
	if err != nil {
		return nil, r.fail(ctx, log, entry, 0, fmt.Errorf("scan: %w", err))
	}
	found := scanned.Len()
	r.Metrics.AddFound(a.Platform(), found)

	candidates, err := filtering.Run(ctx, filtering.Deps{Logger: log, Now: r.Clock.Now}, r.Filters, scanned)
	if err != nil {
		return nil, r.fail(ctx, log, entry, found, fmt.Errorf("filter: %w", err))
	}

	matched := Match(a, candidates, skills, r.Threshold, r.Metrics, log)
	log.Info("matched", zap.Int("found", found), zap.Int("matched", matched.Len()), zap.Float64("threshold", r.Threshold))

	if annotator, ok := a.(Annotator); ok {
		for _, o := range matched.Items {
			annotator.Annotate(o)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, r.fail(ctx, log, entry, found, err)
	}

	for _, o := range matched.Items {
		if err := r.Opportunities.Upsert(ctx, o); err != nil {
			return nil, r.fail(ctx, log, entry, found, &PersistenceError{Op: "upsert", URL: o.URL, Err: err})
		}
	}

	r.finish(entry, found, opportunity.HuntCompleted, nil)
	entry.OpportunitiesMatched = matched.Len()
	if err := r.write(ctx, entry); err != nil {
		// At most one row per run, so no failure row follows.
		r.Metrics.ObserveHunt(a.Platform(), string(opportunity.HuntFailed), time.Duration(entry.ExecutionTimeMS)*time.Millisecond)
		log.Error("writing hunt log failed", zap.Error(err))
		return nil, &PersistenceError{Op: "append hunt log", Err: err}
	}

	r.Metrics.AddMatched(a.Platform(), matched.Len())
	r.Metrics.ObserveHunt(a.Platform(), string(entry.Status), time.Duration(entry.ExecutionTimeMS)*time.Millisecond)
	log.Info("hunt completed", zap.Int64("execution_time_ms", entry.ExecutionTimeMS))

	return matched, nil
}

// fail records the failure row and returns cause. When the row itself cannot
// be written both errors are returned.
func (r *Runner) fail(ctx context.Context, log *zap.Logger, entry *opportunity.HuntLog, found int, cause error) error {
	status := opportunity.HuntFailed
	if IsCancellation(cause) {
		status = opportunity.HuntCancelled
	}

	r.finish(entry, found, status, cause)
	entry.OpportunitiesMatched = 0

	r.Metrics.ObserveHunt(entry.Platform, string(status), time.Duration(entry.ExecutionTimeMS)*time.Millisecond)
	log.Error("hunt failed", zap.String("status", string(status)), zap.Error(cause))

	if err := r.write(ctx, entry); err != nil {
		log.Error("writing hunt log failed", zap.Error(err))
		return errors.Join(cause, &PersistenceError{Op: "append hunt log", Err: err})
	}
	return cause
}

func (r *Runner) finish(entry *opportunity.HuntLog, found int, status opportunity.HuntStatus, cause error) {
	entry.CompletedAt = r.Clock.Now().UTC()
	entry.ExecutionTimeMS = entry.CompletedAt.Sub(entry.StartedAt).Milliseconds()
	entry.OpportunitiesFound = found
	entry.Status = status
	entry.ErrorMessage = nil
	if cause != nil {
		msg := cause.Error()
		entry.ErrorMessage = &msg
	}
}

// write appends the row even when the run context is already cancelled.
func (r *Runner) write(ctx context.Context, entry *opportunity.HuntLog) error {
	return r.Logs.Append(context.WithoutCancel(ctx), entry)
}

// Result is the outcome of one adapter in RunAll.
type Result struct {
	Hunt     string
	Platform string
	Matched  *opportunity.Opportunities
	Err      error
}

// RunAll runs the adapters independently with at most limit in flight
// (unlimited when limit <= 0). One failing adapter never stops the others.
// Results are in adapter order.
func (r *Runner) RunAll(ctx context.Context, adapters []Adapter, skills opportunity.Skills, limit int) []Result {
	results := make([]Result, len(adapters))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, a := range adapters {
		i, a := i, a
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					results[i] = Result{Hunt: a.Name(), Platform: a.Platform(), Err: fmt.Errorf("hunt panicked: %v", p)}
				}
			}()

			matched, err := r.Run(ctx, a, skills)
			results[i] = Result{Hunt: a.Name(), Platform: a.Platform(), Matched: matched, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

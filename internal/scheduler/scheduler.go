// Package scheduler runs hunts periodically at each adapter's frequency.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/opportunity"
)

// Runner is the part of hunt.Runner used by the scheduler.
type Runner interface {
	RunAll(ctx context.Context, adapters []hunt.Adapter, skills opportunity.Skills, limit int) []hunt.Result
}

type Config struct {
	// Specs overrides the cron spec per frequency, e.g. {"hourly": "*/30 * * * *"}.
	Specs       map[hunt.Frequency]string `mapstructure:"specs"`
	Concurrency int                       `mapstructure:"concurrency"`
	RunOnStart  bool                      `mapstructure:"run_on_start"`
}

// Group is the set of adapters fired by one cron entry.
type Group struct {
	Spec     string
	Adapters []hunt.Adapter
}

type Scheduler struct {
	cfg    Config
	cron   *cron.Cron
	runner Runner
	skills opportunity.Skills
	groups []Group
	logger *zap.Logger

	wg sync.WaitGroup
}

func New(cfg Config, runner Runner, skills opportunity.Skills, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLogger := Logger(logger)

	return &Scheduler{
		cfg: cfg,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner: runner,
		skills: skills,
		logger: logger,
	}
}

// Plan groups adapters by cron spec. Adapters without a preferred frequency
// run hourly. Groups are ordered by spec.
func Plan(adapters []hunt.Adapter, specs map[hunt.Frequency]string) []Group {
	bySpec := map[string][]hunt.Adapter{}
	for _, a := range adapters {
		freq := hunt.Hourly
		if s, ok := a.(hunt.Scheduled); ok && s.Frequency() != "" {
			freq = s.Frequency()
		}

		spec := freq.Spec()
		if custom, ok := specs[freq]; ok && custom != "" {
			spec = custom
		}
		bySpec[spec] = append(bySpec[spec], a)
	}

	groups := make([]Group, 0, len(bySpec))
	for spec, list := range bySpec {
		groups = append(groups, Group{Spec: spec, Adapters: list})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Spec < groups[j].Spec })
	return groups
}

// Add registers one cron entry per group.
func (s *Scheduler) Add(ctx context.Context, adapters []hunt.Adapter) error {
	for _, g := range Plan(adapters, s.cfg.Specs) {
		if _, err := s.cron.AddFunc(g.Spec, func() { s.run(ctx, g) }); err != nil {
			return fmt.Errorf("schedule %q: %w", g.Spec, err)
		}
		s.groups = append(s.groups, g)
		s.logger.Info("scheduled hunts", zap.String("spec", g.Spec), zap.Strings("hunts", names(g.Adapters)))
	}
	return nil
}

// Start starts the cron loop and, with RunOnStart, fires every group once in
// the background.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	if !s.cfg.RunOnStart {
		return
	}
	for _, g := range s.groups {
		g := g
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(ctx, g)
		}()
	}
}

// Stop halts scheduling and waits for running hunts.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// RunNow runs every scheduled group once and waits for them.
func (s *Scheduler) RunNow(ctx context.Context) []hunt.Result {
	var results []hunt.Result
	for _, g := range s.groups {
		results = append(results, s.run(ctx, g)...)
	}
	return results
}

func (s *Scheduler) run(ctx context.Context, g Group) []hunt.Result {
	if ctx.Err() != nil {
		return nil
	}

	s.logger.Info("hunt cycle started", zap.String("spec", g.Spec))
	results := s.runner.RunAll(ctx, g.Adapters, s.skills, s.cfg.Concurrency)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			s.logger.Warn("hunt failed", zap.String("hunt", r.Hunt), zap.Error(r.Err))
		}
	}
	s.logger.Info("hunt cycle complete", zap.String("spec", g.Spec), zap.Int("hunts", len(results)), zap.Int("failed", failed))
	return results
}

func names(adapters []hunt.Adapter) []string {
	out := make([]string, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a.Name())
	}
	return out
}

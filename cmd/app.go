package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/filtering"
	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/metrics"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/platforms"
	"github.com/spigell/gig-hunter/internal/profile"
	"github.com/spigell/gig-hunter/internal/ratelimit"
	"github.com/spigell/gig-hunter/internal/secrets"
	"github.com/spigell/gig-hunter/internal/storage"
	"github.com/spigell/gig-hunter/internal/storage/postgres"
	"github.com/spigell/gig-hunter/internal/storage/redislog"
	"github.com/spigell/gig-hunter/internal/storage/sqlite"
)

// application holds what the commands share: stores, metrics and the runner.
type application struct {
	config        *Config
	logger        *zap.Logger
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	opportunities storage.OpportunityStore
	logs          storage.HuntLogStore
	closers       []func()
}

func newApplication(ctx context.Context, config *Config, logger *zap.Logger) (*application, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &application{
		config:   config,
		logger:   logger,
		registry: reg,
		metrics:  metrics.New(reg),
	}

	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *application) openStores(ctx context.Context) error {
	cfg := a.config.Storage

	switch strings.ToLower(cfg.Driver) {
	case "memory":
		m := storage.NewMemory()
		a.opportunities, a.logs = m, m
	case "", "sqlite":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		a.opportunities, a.logs = s, s
	case "postgres":
		cfg.PostgresURL.Name = "postgres url"
		url, err := secrets.Load(cfg.PostgresURL)
		if err != nil {
			return err
		}
		s, err := postgres.Connect(ctx, url)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, s.Close)
		a.opportunities, a.logs = s, s
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	cfg.RedisURL.Name = "redis url"
	redisURL, err := secrets.Optional(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisURL != "" {
		rdb, err := redislog.Connect(ctx, redisURL)
		if err != nil {
			return err
		}
		s := redislog.New(rdb, cfg.RedisStream, cfg.RedisMaxLen)
		a.closers = append(a.closers, func() { _ = s.Close() })
		a.logs = s
	}

	a.logger.Debug("storage ready", zap.String("driver", cfg.Driver), zap.Bool("redis_logs", redisURL != ""))
	return nil
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// runner builds a hunt runner with the configured filters and threshold.
func (a *application) runner() (*hunt.Runner, error) {
	filters := filtering.Default(&a.config.Filters)
	if err := filtering.Validate(filters); err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}
	for _, s := range filtering.Describe(filters) {
		a.logger.Debug("filter", zap.String("name", s.Name), zap.Bool("enabled", s.Enabled), zap.String("reason", s.Reason))
	}

	r := hunt.NewRunner(a.logger, a.opportunities, a.logs)
	r.Filters = filters
	r.Metrics = a.metrics
	if a.config.Threshold > 0 {
		r.Threshold = a.config.Threshold
	}
	return r, nil
}

func (a *application) skills() (opportunity.Skills, error) {
	if len(a.config.Profile) == 0 {
		return nil, errors.New("no skill profile configured (set profile in the config or --profile)")
	}
	return profile.Load(a.config.Profile...)
}

// adapters builds the requested platforms, or every enabled one when none is
// given. Platforms missing credentials are skipped with a warning unless
// requested explicitly.
func (a *application) adapters(requested []string) ([]hunt.Adapter, error) {
	reg := platforms.NewRegistry()
	deps := hunt.Deps{
		Logger:  a.logger,
		Clock:   ratelimit.RealClock(),
		Metrics: a.metrics,
	}

	names := requested
	explicit := len(requested) > 0
	if !explicit {
		names = reg.Platforms()
	}

	var adapters []hunt.Adapter
	for _, name := range names {
		adapter, err := reg.Build(name, deps, a.decoder(name))
		switch {
		case err == nil:
			adapters = append(adapters, adapter)
		case errors.Is(err, hunt.ErrDisabled) && !explicit:
			a.logger.Debug("platform disabled", zap.String("platform", name))
		case errors.Is(err, hunt.ErrUnknownPlatform) || explicit:
			return nil, err
		default:
			a.logger.Warn("skipping platform", zap.String("platform", name), zap.Error(err))
		}
	}

	if len(adapters) == 0 {
		return nil, errors.New("no platform could be built")
	}
	return adapters, nil
}

// decoder fills an adapter config from hunts.<platform>. AllSettings is used
// rather than Sub so that environment bindings are honoured. The global
// user_agent applies unless the platform sets its own.
func (a *application) decoder(platform string) func(any) error {
	return func(target any) error {
		input := map[string]any{}
		if a.config.UserAgent != "" {
			input["user_agent"] = a.config.UserAgent
		}

		hunts, _ := viper.AllSettings()["hunts"].(map[string]any)
		if section, ok := hunts[platform].(map[string]any); ok {
			for k, v := range section {
				input[k] = v
			}
		}
		if len(input) == 0 {
			return nil
		}

		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			Result:           target,
		})
		if err != nil {
			return err
		}
		return dec.Decode(input)
	}
}

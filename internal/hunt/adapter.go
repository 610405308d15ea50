// Package hunt holds the source adapter contract and the run lifecycle shared
// by every platform: scan, filter, match, persist and log.
package hunt

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/logger"
	"github.com/spigell/gig-hunter/internal/metrics"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/ratelimit"
	"github.com/spigell/gig-hunter/internal/scoring"
	"github.com/spigell/gig-hunter/internal/source"
)

// Adapter scans one external platform and scores its listings.
type Adapter interface {
	// Name identifies the hunt in logs, e.g. "upwork-scanner".
	Name() string
	Platform() string
	// Scan issues the platform queries built from skills and returns the
	// listings deduplicated by external id. A failed query is skipped.
	Scan(ctx context.Context, skills opportunity.Skills) (*opportunity.Opportunities, error)
	// Score is pure: identical inputs give identical cards.
	Score(o *opportunity.Opportunity, skills opportunity.Skills) *scoring.Card
}

// Annotator is implemented by adapters that add advice to matched
// opportunities before they are first stored.
type Annotator interface {
	Annotate(o *opportunity.Opportunity)
}

// Frequency is how often the scheduler should run an adapter.
type Frequency string

const (
	Hourly Frequency = "hourly"
	Daily  Frequency = "daily"
)

// Spec returns the cron spec for the frequency.
func (f Frequency) Spec() string {
	switch f {
	case Daily:
		return "@daily"
	default:
		return "@hourly"
	}
}

// Scheduled is implemented by adapters with a preferred run frequency.
type Scheduled interface {
	Frequency() Frequency
}

// Deps are shared by the adapters built from the registry.
type Deps struct {
	Logger     *zap.Logger
	Clock      ratelimit.Clock
	Metrics    *metrics.Metrics
	HTTPClient *http.Client
}

// Settings is the configuration common to every adapter. Platform configs
// embed it with `mapstructure:",squash"`.
type Settings struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Delay     time.Duration `mapstructure:"delay"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Frequency Frequency     `mapstructure:"frequency"`
	UserAgent string        `mapstructure:"user_agent"`
}

// WithDefaults fills unset fields with the platform defaults.
func (s Settings) WithDefaults(baseURL string, delay time.Duration, freq Frequency) Settings {
	if s.BaseURL == "" {
		s.BaseURL = baseURL
	}
	if s.Delay <= 0 {
		s.Delay = delay
	}
	if s.Frequency == "" {
		s.Frequency = freq
	}
	return s
}

// Source returns an HTTP client configured from the adapter settings.
func (d Deps) Source(s Settings) *source.Client {
	c := source.New(d.Logger, s.Timeout)
	if d.HTTPClient != nil {
		c.HTTPClient = d.HTTPClient
	}
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	return c
}

// Scanner returns a scanner spacing queries by the adapter delay.
func (d Deps) Scanner(platform string, s Settings) *Scanner {
	return NewScanner(platform, ratelimit.New(s.Delay, d.Clock), d.Metrics, d.Scoped(platform))
}

// Now is the current time on the injected clock.
func (d Deps) Now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock.Now()
}

// Scoped returns the logger tagged with the platform.
func (d Deps) Scoped(platform string) *zap.Logger {
	return logger.WithFields(d.Logger, zap.String(logger.FieldPlatform, platform))
}

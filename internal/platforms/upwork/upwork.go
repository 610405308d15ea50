// Package upwork scans the Upwork job search API.
package upwork

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dghubble/oauth1"
	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/secrets"
	"github.com/spigell/gig-hunter/internal/source"
)

const (
	Platform = "upwork"
	Name     = "upwork-scanner"

	defaultBaseURL = "https://www.upwork.com"
	searchPath     = "/api/profiles/v2/search/jobs.json"
	jobURL         = "https://www.upwork.com/jobs/"
	defaultDelay   = 500 * time.Millisecond
	fallbackQuery  = "freelance"
	pageSize       = 50
	listingTTL     = 30 * 24 * time.Hour
)

type Config struct {
	hunt.Settings `mapstructure:",squash"`

	APIKey       secrets.Source `mapstructure:"api_key"`
	APISecret    secrets.Source `mapstructure:"api_secret"`
	AccessToken  secrets.Source `mapstructure:"access_token"`
	AccessSecret secrets.Source `mapstructure:"access_secret"`

	MinHourlyRate    float64 `mapstructure:"min_hourly_rate"`
	TargetHourlyRate float64 `mapstructure:"target_hourly_rate"`
	MaxHoursPerWeek  float64 `mapstructure:"max_hours_per_week"`
}

func DefaultConfig() Config {
	return Config{
		Settings:         hunt.Settings{Enabled: true},
		MinHourlyRate:    50,
		TargetHourlyRate: 100,
		MaxHoursPerWeek:  20,
	}
}

type Adapter struct {
	cfg     Config
	client  *source.Client
	scanner *hunt.Scanner
	now     func() time.Time
	logger  *zap.Logger
}

// Factory builds the adapter from the hunts.upwork config section.
func Factory(deps hunt.Deps, decode func(any) error) (hunt.Adapter, error) {
	cfg := DefaultConfig()
	if err := decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return New(cfg, deps)
}

func New(cfg Config, deps hunt.Deps) (*Adapter, error) {
	cfg.Settings = cfg.Settings.WithDefaults(defaultBaseURL, defaultDelay, hunt.Hourly)

	client := deps.Source(cfg.Settings)
	signed, err := signedClient(cfg, client.HTTPClient)
	if err != nil {
		return nil, err
	}
	client.HTTPClient = signed

	return &Adapter{
		cfg:     cfg,
		client:  client,
		scanner: deps.Scanner(Platform, cfg.Settings),
		now:     deps.Now,
		logger:  deps.Scoped(Platform),
	}, nil
}

// signedClient wraps base with OAuth 1.0a request signing. The timeout of
// base is kept.
func signedClient(cfg Config, base *http.Client) (*http.Client, error) {
	cfg.APIKey.Name = "upwork api key"
	cfg.APISecret.Name = "upwork api secret"
	cfg.AccessToken.Name = "upwork access token"
	cfg.AccessSecret.Name = "upwork access secret"

	key, err := secrets.Load(cfg.APIKey)
	if err != nil {
		return nil, err
	}
	secret, err := secrets.Load(cfg.APISecret)
	if err != nil {
		return nil, err
	}
	token, err := secrets.Optional(cfg.AccessToken)
	if err != nil {
		return nil, err
	}
	tokenSecret, err := secrets.Optional(cfg.AccessSecret)
	if err != nil {
		return nil, err
	}

	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	signed := oauth1.NewConfig(key, secret).Client(ctx, oauth1.NewToken(token, tokenSecret))
	signed.Timeout = base.Timeout
	return signed, nil
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Platform() string { return Platform }

func (a *Adapter) Frequency() hunt.Frequency { return a.cfg.Frequency }

func (a *Adapter) Scan(ctx context.Context, skills opportunity.Skills) (*opportunity.Opportunities, error) {
	a.logger.Info("scanning upwork")
	return a.scanner.Scan(ctx, Queries(skills), a.search)
}

// Queries falls back to a generic query when no skill qualifies.
func Queries(skills opportunity.Skills) []string {
	queries := hunt.PrimaryQueries(skills)
	if len(queries) == 0 {
		return []string{fallbackQuery}
	}
	return queries
}

func (a *Adapter) search(ctx context.Context, query string) ([]*opportunity.Opportunity, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", "recency")
	q.Set("paging", "0;"+strconv.Itoa(pageSize))
	q.Set("budget", strconv.FormatFloat(a.cfg.MinHourlyRate, 'f', -1, 64)+"-")

	var jobs []job
	if err := a.client.GetItems(ctx, a.cfg.BaseURL+searchPath, q, "jobs", &jobs); err != nil {
		return nil, err
	}

	now := a.now()
	result := make([]*opportunity.Opportunity, 0, len(jobs))
	for _, j := range jobs {
		result = append(result, j.toOpportunity(now))
	}
	return result, nil
}

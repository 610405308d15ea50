// Package wellfound scans equity-focused startup roles on Wellfound.
package wellfound

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/secrets"
	"github.com/spigell/gig-hunter/internal/source"
)

const (
	Platform = "wellfound"
	Name     = "wellfound-scanner"

	defaultBaseURL = "https://api.wellfound.com/v1"
	jobsPath       = "/jobs"
	jobURL         = "https://wellfound.com/jobs/"
	defaultDelay   = time.Second
	vestingYears   = 4
)

var roleRules = []hunt.Rule{
	{Target: "software-engineer", Keywords: []string{"python", "javascript", "react", "node"}},
	{Target: "product-manager", Keywords: []string{"product", "pm"}},
	{Target: "designer", Keywords: []string{"design", "ui", "ux"}},
	{Target: "marketing", Keywords: []string{"marketing", "growth"}},
	{Target: "sales", Keywords: []string{"sales", "business development"}},
}

type Config struct {
	hunt.Settings `mapstructure:",squash"`

	APIKey secrets.Source `mapstructure:"api_key"`
}

func DefaultConfig() Config {
	return Config{Settings: hunt.Settings{Enabled: true}}
}

type Adapter struct {
	cfg     Config
	client  *source.Client
	scanner *hunt.Scanner
	now     func() time.Time
	logger  *zap.Logger
}

// Factory builds the adapter from the hunts.wellfound config section.
func Factory(deps hunt.Deps, decode func(any) error) (hunt.Adapter, error) {
	cfg := DefaultConfig()
	if err := decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return New(cfg, deps)
}

func New(cfg Config, deps hunt.Deps) (*Adapter, error) {
	cfg.Settings = cfg.Settings.WithDefaults(defaultBaseURL, defaultDelay, hunt.Daily)

	cfg.APIKey.Name = "wellfound api key"
	key, err := secrets.Optional(cfg.APIKey)
	if err != nil {
		return nil, err
	}

	client := deps.Source(cfg.Settings)
	if key != "" {
		client.Header.Set("Authorization", "Bearer "+key)
	}

	return &Adapter{
		cfg:     cfg,
		client:  client,
		scanner: deps.Scanner(Platform, cfg.Settings),
		now:     deps.Now,
		logger:  deps.Scoped(Platform),
	}, nil
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Platform() string { return Platform }

func (a *Adapter) Frequency() hunt.Frequency { return a.cfg.Frequency }

func (a *Adapter) Scan(ctx context.Context, skills opportunity.Skills) (*opportunity.Opportunities, error) {
	roles := Roles(skills)
	a.logger.Info("scanning wellfound", zap.Strings("roles", roles))
	return a.scanner.Scan(ctx, roles, a.searchRole)
}

func Roles(skills opportunity.Skills) []string {
	return hunt.MapSkills(skills, roleRules)
}

func (a *Adapter) searchRole(ctx context.Context, role string) ([]*opportunity.Opportunity, error) {
	q := url.Values{}
	q.Set("role", role)

	var jobs []job
	if err := a.client.GetItems(ctx, a.cfg.BaseURL+jobsPath, q, "jobs", &jobs); err != nil {
		return nil, err
	}

	now := a.now()
	result := make([]*opportunity.Opportunity, 0, len(jobs))
	for _, j := range jobs {
		if j.ID == "" {
			continue
		}
		result = append(result, j.toOpportunity(now))
	}
	return result, nil
}

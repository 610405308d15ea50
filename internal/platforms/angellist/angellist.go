// Package angellist scans startup jobs with equity through the AngelList
// (Wellfound) jobs API.
package angellist

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/secrets"
	"github.com/spigell/gig-hunter/internal/source"
)

const (
	Platform = "angellist"
	Name     = "angellist-scanner"

	defaultBaseURL = "https://api.wellfound.com/v1"
	jobsPath       = "/jobs"
	companyURL     = "https://wellfound.com/company/"
	defaultDelay   = 1500 * time.Millisecond
)

var roleRules = []hunt.Rule{
	{Target: "engineer", Keywords: []string{"python", "javascript", "react", "node"}},
	{Target: "full-stack", Keywords: []string{"python", "javascript", "react", "node"}},
	{Target: "product-manager", Keywords: []string{"product", "pm", "management"}},
	{Target: "designer", Keywords: []string{"design", "ux", "ui"}},
	{Target: "sales", Keywords: []string{"sales", "business development"}},
	{Target: "marketing", Keywords: []string{"marketing", "growth"}},
}

type Config struct {
	hunt.Settings `mapstructure:",squash"`

	APIKey     secrets.Source `mapstructure:"api_key"`
	RemoteOnly bool           `mapstructure:"remote_only"`
	MinSalary  float64        `mapstructure:"min_salary"`

	// Used for the stage advice attached to matched jobs.
	YearsExperience int           `mapstructure:"years_experience"`
	RiskTolerance   RiskTolerance `mapstructure:"risk_tolerance"`
}

func DefaultConfig() Config {
	return Config{
		Settings:      hunt.Settings{Enabled: true},
		RemoteOnly:    true,
		MinSalary:     80000,
		RiskTolerance: RiskMedium,
	}
}

type Adapter struct {
	cfg     Config
	client  *source.Client
	scanner *hunt.Scanner
	now     func() time.Time
	logger  *zap.Logger
}

// Factory builds the adapter from the hunts.angellist config section.
func Factory(deps hunt.Deps, decode func(any) error) (hunt.Adapter, error) {
	cfg := DefaultConfig()
	if err := decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return New(cfg, deps)
}

func New(cfg Config, deps hunt.Deps) (*Adapter, error) {
	cfg.Settings = cfg.Settings.WithDefaults(defaultBaseURL, defaultDelay, hunt.Daily)
	if cfg.MinSalary <= 0 {
		cfg.MinSalary = DefaultConfig().MinSalary
	}

	cfg.APIKey.Name = "angellist api key"
	key, err := secrets.Load(cfg.APIKey)
	if err != nil {
		return nil, err
	}

	client := deps.Source(cfg.Settings)
	client.Header.Set("Authorization", "Bearer "+key)

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
	a.logger.Info("scanning angellist", zap.Strings("roles", roles))
	return a.scanner.Scan(ctx, roles, a.searchRole)
}

// Roles maps skills to the role types searched on AngelList.
func Roles(skills opportunity.Skills) []string {
	return hunt.MapSkills(skills, roleRules)
}

func (a *Adapter) searchRole(ctx context.Context, role string) ([]*opportunity.Opportunity, error) {
	q := url.Values{}
	q.Set("role", role)
	q.Set("remote", strconv.FormatBool(a.cfg.RemoteOnly))
	q.Set("equity", "true")

	var jobs []job
	if err := a.client.GetItems(ctx, a.cfg.BaseURL+jobsPath, q, "jobs", &jobs); err != nil {
		return nil, err
	}

	now := a.now()
	result := make([]*opportunity.Opportunity, 0, len(jobs))
	for _, j := range jobs {
		o, err := j.toOpportunity(now)
		if err != nil {
			a.logger.Warn("skipping job", zap.String("id", j.ID), zap.Error(err))
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

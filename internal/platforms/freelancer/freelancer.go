// Package freelancer scans active projects on Freelancer.com.
package freelancer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/secrets"
	"github.com/spigell/gig-hunter/internal/source"
)

const (
	Platform = "freelancer"
	Name     = "freelancer-scanner"

	defaultBaseURL = "https://www.freelancer.com/api"
	searchPath     = "/projects/0.1/projects/active/"
	projectURL     = "https://www.freelancer.com/projects/"
	apiKeyHeader   = "Freelancer-Developer-Key"
	defaultDelay   = time.Second
	pageSize       = 50
	listingTTL     = 30 * 24 * time.Hour
)

// jobIDs maps skill names to Freelancer job category ids.
var jobIDs = map[string]int{
	"Python":            3,
	"JavaScript":        17,
	"PHP":               4,
	"Java":              1,
	"C++":               2,
	"Ruby":              7,
	"Go":                237,
	"Rust":              372,
	"React":             124,
	"Node.js":           124,
	"Vue":               341,
	"Angular":           341,
	"Django":            3,
	"FastAPI":           3,
	"PostgreSQL":        8,
	"MongoDB":           286,
	"Docker":            329,
	"AWS":               262,
	"Machine Learning":  132,
	"Data Science":      132,
	"Technical Writing": 12,
	"Content Writing":   11,
	"API":               149,
	"Web Scraping":      141,
}

type Config struct {
	hunt.Settings `mapstructure:",squash"`

	APIKey secrets.Source `mapstructure:"api_key"`

	MinBudget      float64 `mapstructure:"min_budget"`
	TargetBudget   float64 `mapstructure:"target_budget"`
	MaxCompetition float64 `mapstructure:"max_competition"`
}

func DefaultConfig() Config {
	return Config{
		Settings:       hunt.Settings{Enabled: true},
		MinBudget:      200,
		TargetBudget:   1000,
		MaxCompetition: 20,
	}
}

type Adapter struct {
	cfg     Config
	client  *source.Client
	scanner *hunt.Scanner
	now     func() time.Time
	logger  *zap.Logger
}

// Factory builds the adapter from the hunts.freelancer config section.
func Factory(deps hunt.Deps, decode func(any) error) (hunt.Adapter, error) {
	cfg := DefaultConfig()
	if err := decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return New(cfg, deps)
}

func New(cfg Config, deps hunt.Deps) (*Adapter, error) {
	cfg.Settings = cfg.Settings.WithDefaults(defaultBaseURL, defaultDelay, hunt.Hourly)

	cfg.APIKey.Name = "freelancer api key"
	key, err := secrets.Load(cfg.APIKey)
	if err != nil {
		return nil, err
	}

	client := deps.Source(cfg.Settings)
	client.Header.Set(apiKeyHeader, key)

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
	a.logger.Info("scanning freelancer")
	return a.scanner.Scan(ctx, hunt.PrimaryQueries(skills), a.search)
}

// JobIDs returns the category ids for every word group of the query that
// names a known skill.
func JobIDs(query string) []int {
	if id, ok := jobIDs[query]; ok {
		return []int{id}
	}

	var ids []int
	seen := map[int]bool{}
	for _, word := range strings.Fields(query) {
		if id, ok := jobIDs[word]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func (a *Adapter) search(ctx context.Context, query string) ([]*opportunity.Opportunity, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("min_avg_price", strconv.FormatFloat(a.cfg.MinBudget, 'f', -1, 64))
	q.Set("project_types", "fixed,hourly")
	q.Set("compact", "true")
	q.Set("limit", strconv.Itoa(pageSize))

	if ids := JobIDs(query); len(ids) > 0 {
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, strconv.Itoa(id))
		}
		q.Set("jobs", strings.Join(parts, ","))
	}

	var projects []project
	if err := a.client.GetItems(ctx, a.cfg.BaseURL+searchPath, q, "result.projects", &projects); err != nil {
		return nil, err
	}

	now := a.now()
	result := make([]*opportunity.Opportunity, 0, len(projects))
	for _, p := range projects {
		result = append(result, p.toOpportunity(now))
	}
	return result, nil
}

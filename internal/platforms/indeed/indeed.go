// Package indeed scans Indeed job postings through the publisher API or,
// without a publisher key, the public search page.
package indeed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/secrets"
	"github.com/spigell/gig-hunter/internal/source"
)

const (
	Platform = "indeed"
	Name     = "indeed-scanner"

	defaultBaseURL  = "https://www.indeed.com"
	defaultAPIURL   = "http://api.indeed.com/ads/apisearch"
	searchPath      = "/jobs"
	viewPath        = "/viewjob?jk="
	defaultDelay    = 2 * time.Second
	defaultLocation = "remote"
	jobTypes        = "fulltime,contract,parttime"
	pageSize        = "25"
)

type Config struct {
	hunt.Settings `mapstructure:",squash"`

	PublisherKey secrets.Source `mapstructure:"publisher_key"`
	APIURL       string         `mapstructure:"api_url"`
	Location     string         `mapstructure:"location"`
	MinSalary    float64        `mapstructure:"min_salary"`
	RemoteOnly   bool           `mapstructure:"remote_only"`
}

func DefaultConfig() Config {
	return Config{
		Settings:  hunt.Settings{Enabled: true},
		APIURL:    defaultAPIURL,
		Location:  defaultLocation,
		MinSalary: 60000,
	}
}

type Adapter struct {
	cfg          Config
	publisherKey string
	client       *source.Client
	scanner      *hunt.Scanner
	now          func() time.Time
	logger       *zap.Logger
}

// Factory builds the adapter from the hunts.indeed config section.
func Factory(deps hunt.Deps, decode func(any) error) (hunt.Adapter, error) {
	cfg := DefaultConfig()
	if err := decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return New(cfg, deps)
}

func New(cfg Config, deps hunt.Deps) (*Adapter, error) {
	cfg.Settings = cfg.Settings.WithDefaults(defaultBaseURL, defaultDelay, hunt.Hourly)
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Location == "" {
		cfg.Location = defaultLocation
	}

	cfg.PublisherKey.Name = "indeed publisher key"
	key, err := secrets.Optional(cfg.PublisherKey)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		cfg:          cfg,
		publisherKey: key,
		client:       deps.Source(cfg.Settings),
		scanner:      deps.Scanner(Platform, cfg.Settings),
		now:          deps.Now,
		logger:       deps.Scoped(Platform),
	}, nil
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Platform() string { return Platform }

func (a *Adapter) Frequency() hunt.Frequency { return a.cfg.Frequency }

func (a *Adapter) Scan(ctx context.Context, skills opportunity.Skills) (*opportunity.Opportunities, error) {
	fetch := a.scrape
	mode := "scrape"
	if a.publisherKey != "" {
		fetch = a.api
		mode = "api"
	}

	a.logger.Info("scanning indeed", zap.String("mode", mode))
	return a.scanner.Scan(ctx, hunt.PrimaryQueries(skills), fetch)
}

func (a *Adapter) api(ctx context.Context, query string) ([]*opportunity.Opportunity, error) {
	q := url.Values{}
	q.Set("publisher", a.publisherKey)
	q.Set("q", query)
	q.Set("l", a.cfg.Location)
	q.Set("jt", jobTypes)
	q.Set("limit", pageSize)
	q.Set("format", "json")
	q.Set("v", "2")

	var results []posting
	if err := a.client.GetItems(ctx, a.cfg.APIURL, q, "results", &results); err != nil {
		return nil, err
	}

	now := a.now()
	jobs := make([]*opportunity.Opportunity, 0, len(results))
	for _, p := range results {
		if p.URL == "" && p.JobKey != "" {
			p.URL = a.cfg.BaseURL + viewPath + url.QueryEscape(p.JobKey)
		}
		jobs = append(jobs, a.toOpportunity(p, now))
	}
	return jobs, nil
}

func (a *Adapter) scrape(ctx context.Context, query string) ([]*opportunity.Opportunity, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("l", a.cfg.Location)

	doc, err := a.client.GetDocument(ctx, a.cfg.BaseURL+searchPath, q)
	if err != nil {
		return nil, err
	}

	now := a.now()
	var jobs []*opportunity.Opportunity
	doc.Find(".job_seen_beacon").Each(func(_ int, s *goquery.Selection) {
		p := posting{
			Title:    strings.TrimSpace(s.Find(".jobTitle").Text()),
			Company:  strings.TrimSpace(s.Find(".companyName").Text()),
			Location: strings.TrimSpace(s.Find(".companyLocation").Text()),
			Salary:   strings.TrimSpace(s.Find(".salary-snippet").Text()),
			Snippet:  strings.TrimSpace(s.Find(".job-snippet").Text()),
		}
		if href, ok := s.Find("a").Attr("href"); ok {
			p.URL = a.cfg.BaseURL + href
		}
		if p.Title == "" || p.URL == "" {
			return
		}
		jobs = append(jobs, a.toOpportunity(p, now))
	})

	return jobs, nil
}

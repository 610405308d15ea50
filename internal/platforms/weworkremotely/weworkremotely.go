// Package weworkremotely scrapes the We Work Remotely category pages.
package weworkremotely

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/scoring"
)

const (
	Platform = "weworkremotely"
	Name     = "weworkremotely-scanner"

	defaultBaseURL = "https://weworkremotely.com"
	defaultDelay   = 2 * time.Second
	location       = "Remote (Worldwide)"

	weightSkills   = 0.50
	weightRemote   = 0.30
	weightCategory = 0.20
)

var categoryRules = []hunt.Rule{
	{Target: "programming", Keywords: []string{"python", "javascript", "react", "node", "java"}},
	{Target: "design", Keywords: []string{"design", "ui", "ux", "figma"}},
	{Target: "marketing", Keywords: []string{"marketing", "seo", "content"}},
	{Target: "devops", Keywords: []string{"devops", "aws", "docker", "kubernetes"}},
}

type Config struct {
	hunt.Settings `mapstructure:",squash"`
}

func DefaultConfig() Config {
	return Config{Settings: hunt.Settings{Enabled: true}}
}

type Adapter struct {
	cfg     Config
	fetch   func(ctx context.Context, category string) (*goquery.Document, error)
	scanner *hunt.Scanner
	now     func() time.Time
	logger  *zap.Logger
}

// Factory builds the adapter from the hunts.weworkremotely config section.
func Factory(deps hunt.Deps, decode func(any) error) (hunt.Adapter, error) {
	cfg := DefaultConfig()
	if err := decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return New(cfg, deps), nil
}

func New(cfg Config, deps hunt.Deps) *Adapter {
	cfg.Settings = cfg.Settings.WithDefaults(defaultBaseURL, defaultDelay, hunt.Hourly)
	client := deps.Source(cfg.Settings)

	return &Adapter{
		cfg: cfg,
		fetch: func(ctx context.Context, category string) (*goquery.Document, error) {
			return client.GetDocument(ctx, CategoryURL(cfg.BaseURL, category), nil)
		},
		scanner: deps.Scanner(Platform, cfg.Settings),
		now:     deps.Now,
		logger:  deps.Scoped(Platform),
	}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Platform() string { return Platform }

func (a *Adapter) Frequency() hunt.Frequency { return a.cfg.Frequency }

func (a *Adapter) Scan(ctx context.Context, skills opportunity.Skills) (*opportunity.Opportunities, error) {
	categories := Categories(skills)
	a.logger.Info("scanning weworkremotely", zap.Strings("categories", categories))
	return a.scanner.Scan(ctx, categories, a.scanCategory)
}

// Categories maps skills to board categories.
func Categories(skills opportunity.Skills) []string {
	return hunt.MapSkills(skills, categoryRules)
}

func CategoryURL(baseURL, category string) string {
	return baseURL + "/categories/remote-" + category + "-jobs"
}

func (a *Adapter) scanCategory(ctx context.Context, category string) ([]*opportunity.Opportunity, error) {
	doc, err := a.fetch(ctx, category)
	if err != nil {
		return nil, err
	}

	now := a.now()
	var jobs []*opportunity.Opportunity
	doc.Find("li.feature").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").Attr("href")
		title := strings.TrimSpace(s.Find(".title").Text())
		if title == "" || href == "" {
			return
		}

		o := opportunity.New(Platform, href, a.cfg.BaseURL+href, now)
		o.Title = title
		o.Description = strings.TrimSpace(s.Find(".region").Text())
		o.ClientInfo = &opportunity.ClientInfo{
			Name:     strings.TrimSpace(s.Find(".company").Text()),
			Location: location,
		}
		o.Metadata["remote_type"] = "remote"
		o.Metadata["job_type"] = "full-time"
		o.Metadata["category"] = category

		jobs = append(jobs, o)
	})

	return jobs, nil
}

// Score weighs the skills mentioned in the listing, the remote arrangement
// (always remote here) and whether the user has skills in its category.
func (a *Adapter) Score(o *opportunity.Opportunity, skills opportunity.Skills) *scoring.Card {
	category, _ := o.Metadata["category"].(string)

	return scoring.NewCard(Platform).
		Add("skills", weightSkills, scoring.TextSkillMatch(o.Title+" "+o.Description, skills)).
		Add("remote", weightRemote, 1).
		Add("category", weightCategory, categoryBonus(category, skills))
}

func categoryBonus(category string, skills opportunity.Skills) float64 {
	category = scoring.Fold(category)
	if category == "" {
		return 0.5
	}
	for _, s := range skills {
		if scoring.Fold(s.Category) == category || strings.Contains(scoring.Fold(s.Name), category) {
			return 1
		}
	}
	return 0.5
}

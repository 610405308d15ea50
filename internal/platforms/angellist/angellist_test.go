package angellist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/secrets"
)

func newAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Delay = time.Millisecond
	cfg.APIKey = secrets.Source{Value: "token"}

	a, err := New(cfg, hunt.Deps{})
	require.NoError(t, err)
	return a
}

const jobs = `{"jobs": [
	{"id": 42, "title": "Founding Engineer", "description": "Build the core product",
	 "startup": {"name": "Rocket", "slug": "rocket", "stage": "series-a", "company_size": "11-50",
	             "total_funding": 5000000, "investors": ["YC"], "markets": ["fintech"]},
	 "salary_min": 90000, "salary_max": 120000, "equity_min": 0.25, "equity_max": 0.5,
	 "skills": ["Python", "Go"], "min_experience": 3, "application_deadline": "2026-12-01T00:00:00Z",
	 "remote_ok": true},
	{"id": 43, "title": "Orphan job"}
]}`

func TestScan(t *testing.T) {
	var roles []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.URL.Query().Get("equity"))
		assert.Equal(t, "true", r.URL.Query().Get("remote"))
		roles = append(roles, r.URL.Query().Get("role"))
		_, _ = w.Write([]byte(jobs))
	}))
	defer server.Close()

	got, err := newAdapter(t, server.URL).Scan(context.Background(), opportunity.Skills{{Name: "Python", Proficiency: 3}})
	require.NoError(t, err)

	assert.Equal(t, []string{"engineer", "full-stack"}, roles)
	require.Equal(t, 1, got.Len())

	o := got.Items[0]
	assert.Equal(t, "42", o.ExternalID)
	assert.Equal(t, "https://wellfound.com/company/rocket/jobs/42", o.URL)
	assert.Equal(t, opportunity.PayAnnual, o.PayType)
	assert.Equal(t, "series-a", o.ClientInfo.Stage)
	assert.Equal(t, 5000000.0, *o.ClientInfo.Funding)
	assert.Equal(t, 0.5, o.Metadata["equity_max"])
	assert.Equal(t, 3, o.Metadata["experience_required"])
	require.NotNil(t, o.ExpiresAt)
	assert.Equal(t, 2026, o.ExpiresAt.Year())
}

func TestScanWithoutMappableRole(t *testing.T) {
	a := newAdapter(t, "http://unused")
	got, err := a.Scan(context.Background(), opportunity.Skills{{Name: "COBOL", Proficiency: 9}})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(DefaultConfig(), hunt.Deps{})
	assert.Error(t, err)
}

func TestRoles(t *testing.T) {
	skills := opportunity.Skills{{Name: "Growth Hacking"}, {Name: "Product Strategy"}, {Name: "React"}}
	assert.Equal(t, []string{"engineer", "full-stack", "product-manager", "marketing"}, Roles(skills))
}

func startupJob() *opportunity.Opportunity {
	o := opportunity.New(Platform, "42", "https://wellfound.com/company/rocket/jobs/42", time.Now())
	o.RequiredSkills = []string{"Python", "Go"}
	o.PayMin, o.PayMax = opportunity.Float(90000), opportunity.Float(120000)
	o.ClientInfo = &opportunity.ClientInfo{Stage: "series-a", Funding: opportunity.Float(5000000), Investors: []string{"YC"}}
	o.Metadata["equity_max"] = 0.5
	return o
}

func TestScore(t *testing.T) {
	a := newAdapter(t, "http://unused")

	card := a.Score(startupJob(), opportunity.Skills{{Name: "python"}})

	// skills 1/2, equity capped at 1, startup .5+.2+.1+.1, salary above target
	assert.InDelta(t, 0.35*0.5+0.30*1+0.20*0.9+0.15*1, card.Total(), 1e-9)
	assert.Empty(t, card.Errors())
}

func TestScoreDefaults(t *testing.T) {
	a := newAdapter(t, "http://unused")
	o := opportunity.New(Platform, "1", "https://wellfound.com/company/x/jobs/1", time.Now())

	card := a.Score(o, nil)

	skills, _ := card.Part("skills")
	assert.Equal(t, noRequirements, skills.Value)
	equity, _ := card.Part("equity")
	assert.Equal(t, 0.0, equity.Value)
	startup, _ := card.Part("startup")
	assert.Equal(t, 0.5, startup.Value)
	salary, _ := card.Part("salary")
	assert.Equal(t, 0.5, salary.Value)
}

func TestScoreSalary(t *testing.T) {
	a := newAdapter(t, "http://unused")

	tests := []struct {
		name     string
		min, max *float64
		want     float64
	}{
		{name: "below floor", max: opportunity.Float(60000), want: lowSalary},
		{name: "between", min: opportunity.Float(92000), want: 0.75},
		{name: "above target", max: opportunity.Float(110000), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opportunity.New(Platform, "1", "u", time.Now())
			o.PayMin, o.PayMax = tt.min, tt.max
			assert.InDelta(t, tt.want, a.salaryScore(o), 1e-9)
		})
	}
}

func TestScoreMalformedEquity(t *testing.T) {
	a := newAdapter(t, "http://unused")
	o := startupJob()
	o.Metadata["equity_max"] = "lots"

	card := a.Score(o, nil)
	require.Len(t, card.Errors(), 1)
	assert.Equal(t, "equity", card.Errors()[0].Part)
}

func TestStageRecommendation(t *testing.T) {
	assert.Equal(t, []string{"series-b", "series-c", "series-d"}, StageRecommendation(2, RiskHigh))
	assert.Equal(t, []string{"series-b", "series-c", "series-d"}, StageRecommendation(10, RiskLow))
	assert.Equal(t, []string{"seed", "series-a"}, StageRecommendation(7, RiskHigh))
	assert.Equal(t, []string{"series-a", "series-b"}, StageRecommendation(5, RiskMedium))
}

func TestAnnotate(t *testing.T) {
	a := newAdapter(t, "http://unused")
	o := startupJob()

	a.Annotate(o)

	// default profile: no experience, medium risk
	assert.Equal(t, []string{"series-b", "series-c", "series-d"}, o.Metadata["recommended_stages"])
	assert.Equal(t, false, o.Metadata["stage_fit"])
}

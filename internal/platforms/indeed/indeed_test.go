package indeed

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

const searchPage = `<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/rc/clk?jk=abc">Senior Python Engineer</a></h2>
  <span class="companyName">Acme</span>
  <div class="companyLocation">Remote</div>
  <div class="salary-snippet">$120,000 - $150,000 a year</div>
  <div class="job-snippet">Python, Docker and PostgreSQL experience.</div>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"></h2>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/rc/clk?jk=def">Go Developer</a></h2>
  <span class="companyName">Initech</span>
  <div class="companyLocation">Austin, TX</div>
  <div class="job-snippet">Hybrid team.</div>
</div>
</body></html>`

func newAdapter(t *testing.T, cfg Config) *Adapter {
	t.Helper()
	cfg.Delay = time.Millisecond
	a, err := New(cfg, hunt.Deps{})
	require.NoError(t, err)
	return a
}

func TestScanScrapesWithoutPublisherKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "remote", r.URL.Query().Get("l"))
		_, _ = w.Write([]byte(searchPage))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL

	got, err := newAdapter(t, cfg).Scan(context.Background(), opportunity.Skills{{Name: "Python", Proficiency: 8}})
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())

	first := got.Items[0]
	assert.Equal(t, "senior-python-engineer-acme", first.ExternalID)
	assert.Equal(t, server.URL+"/rc/clk?jk=abc", first.URL)
	assert.Equal(t, opportunity.PayAnnual, first.PayType)
	assert.Equal(t, 120000.0, *first.PayMin)
	assert.Equal(t, 150000.0, *first.PayMax)
	assert.Equal(t, []string{"Python", "Docker", "SQL", "PostgreSQL"}, first.RequiredSkills)
	assert.Equal(t, "remote", first.Metadata["remote_type"])
	assert.Equal(t, "Acme", first.ClientInfo.Name)

	second := got.Items[1]
	assert.Equal(t, 60000.0, *second.PayMin)
	assert.Equal(t, 90000.0, *second.PayMax)
	assert.Equal(t, "onsite", second.Metadata["remote_type"])
}

func TestScanUsesAPIWithPublisherKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pub", r.URL.Query().Get("publisher"))
		assert.Equal(t, jobTypes, r.URL.Query().Get("jt"))
		_, _ = w.Write([]byte(`{"results": [
			{"jobkey": "k1", "jobtitle": "Data Engineer", "company": "Globex", "companyRating": 4,
			 "formattedLocation": "Remote", "snippet": "Python and SQL, work from home", "formattedSalary": "$90,000 a year"}
		]}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.APIURL = server.URL
	cfg.BaseURL = "https://www.indeed.com"
	cfg.PublisherKey = secrets.Source{Value: "pub"}

	got, err := newAdapter(t, cfg).Scan(context.Background(), opportunity.Skills{{Name: "Python", Proficiency: 8}})
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())

	o := got.Items[0]
	assert.Equal(t, "k1", o.ExternalID)
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=k1", o.URL)
	assert.Equal(t, 90000.0, *o.PayMin)
	assert.Equal(t, 4.0, *o.ClientInfo.Rating)
}

func TestScore(t *testing.T) {
	a := newAdapter(t, DefaultConfig())

	o := opportunity.New(Platform, "1", "https://i/1", time.Now())
	o.RequiredSkills = []string{"Python", "Docker"}
	o.PayMin, o.PayMax = opportunity.Float(80000), opportunity.Float(100000)
	o.ClientInfo = &opportunity.ClientInfo{Rating: opportunity.Float(4)}
	o.Metadata["remote_type"] = "hybrid"

	card := a.Score(o, opportunity.Skills{{Name: "python"}, {Name: "Docker Compose"}})

	// exact match 0.5, salary (90k-60k)/60k 0.5, company 0.8, hybrid 0.7, benefits 0.5
	want := 0.40*0.5 + 0.30*0.5 + 0.15*0.8 + 0.10*0.7 + 0.05*0.5
	assert.InDelta(t, want, card.Total(), 1e-9)
}

func TestScoreRemoteOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RemoteOnly = true
	a := newAdapter(t, cfg)

	o := opportunity.New(Platform, "1", "https://i/1", time.Now())
	o.PayMin, o.PayMax = opportunity.Float(60000), opportunity.Float(60000)
	o.Metadata["remote_type"] = "hybrid"

	location, ok := a.Score(o, nil).Part("location")
	require.True(t, ok)
	assert.Equal(t, 0.0, location.Value)
}

func TestScoreMissingSalaryIsScoringError(t *testing.T) {
	a := newAdapter(t, DefaultConfig())
	o := opportunity.New(Platform, "1", "https://i/1", time.Now())

	card := a.Score(o, nil)
	require.Len(t, card.Errors(), 1)
	assert.ErrorIs(t, card.Errors()[0], errNoSalary)
}

func TestParseSalary(t *testing.T) {
	tests := []struct {
		text     string
		low, high float64
	}{
		{text: "", low: 60000, high: 90000},
		{text: "Competitive", low: 60000, high: 90000},
		{text: "$45 an hour", low: 45, high: 45},
		{text: "$70,000 - $95,000 a year", low: 70000, high: 95000},
	}

	for _, tt := range tests {
		low, high := ParseSalary(tt.text, 60000)
		assert.Equal(t, tt.low, low, tt.text)
		assert.Equal(t, tt.high, high, tt.text)
	}
}

func TestDetectRemoteType(t *testing.T) {
	assert.Equal(t, Remote, DetectRemoteType("Work from home", ""))
	assert.Equal(t, Hybrid, DetectRemoteType("Hybrid remote", "NYC"))
	assert.Equal(t, Onsite, DetectRemoteType("Office", "Berlin"))
}

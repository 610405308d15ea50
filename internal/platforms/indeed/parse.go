package indeed

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

// RemoteType is the work arrangement detected from the posting text.
type RemoteType string

const (
	Remote RemoteType = "remote"
	Hybrid RemoteType = "hybrid"
	Onsite RemoteType = "onsite"
)

var (
	salaryNumber = regexp.MustCompile(`\$?[\d,]+`)
	whitespace   = regexp.MustCompile(`\s+`)

	skillPatterns = []string{
		"Python", "JavaScript", "Java", "React", "Node.js", "AWS",
		"Docker", "Kubernetes", "SQL", "MongoDB", "PostgreSQL",
		"TypeScript", "Go", "Rust", "Machine Learning", "AI",
		"Data Science", "DevOps", "Agile", "Scrum",
	}
)

// posting is shared by the API results and scraped cards.
type posting struct {
	JobKey          string   `json:"jobkey"`
	JobTitle        string   `json:"jobtitle"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	CompanyRating   *float64 `json:"companyRating"`
	FormattedLoc    string   `json:"formattedLocation"`
	Location        string   `json:"location"`
	FormattedSalary string   `json:"formattedSalary"`
	Salary          string   `json:"salary"`
	Snippet         string   `json:"snippet"`
	URL             string   `json:"url"`
	Date            string   `json:"date"`
	JobType         string   `json:"jobType"`
}

func (p posting) title() string {
	if p.JobTitle != "" {
		return p.JobTitle
	}
	return p.Title
}

func (p posting) location() string {
	if p.FormattedLoc != "" {
		return p.FormattedLoc
	}
	return p.Location
}

func (p posting) id() string {
	if p.JobKey != "" {
		return p.JobKey
	}
	return whitespace.ReplaceAllString(strings.ToLower(p.title()+"-"+p.Company), "-")
}

func (a *Adapter) toOpportunity(p posting, now time.Time) *opportunity.Opportunity {
	o := opportunity.New(Platform, p.id(), p.URL, now)
	o.Title = p.title()
	o.Description = p.Snippet
	o.PayType = opportunity.PayAnnual
	o.RequiredSkills = ExtractSkills(p.Snippet)

	salary := p.FormattedSalary
	if salary == "" {
		salary = p.Salary
	}
	low, high := ParseSalary(salary, a.cfg.MinSalary)
	o.PayMin, o.PayMax = &low, &high

	o.ClientInfo = &opportunity.ClientInfo{
		Name:     p.Company,
		Rating:   p.CompanyRating,
		Location: p.location(),
	}

	o.Metadata["remote_type"] = string(DetectRemoteType(p.Snippet, p.location()))
	if p.JobType != "" {
		o.Metadata["job_type"] = p.JobType
	}
	if p.Date != "" {
		o.Metadata["posted_date"] = p.Date
	}

	return o
}

// ParseSalary takes the lowest and highest number in the text. Without any
// number the range defaults to minSalary..1.5*minSalary.
func ParseSalary(text string, minSalary float64) (float64, float64) {
	var values []float64
	for _, match := range salaryNumber.FindAllString(text, -1) {
		digits := strings.NewReplacer(",", "", "$", "").Replace(match)
		if v, err := strconv.ParseFloat(digits, 64); err == nil {
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		return minSalary, minSalary * 1.5
	}

	low, high := values[0], values[0]
	for _, v := range values[1:] {
		low = min(low, v)
		high = max(high, v)
	}
	return low, high
}

// ExtractSkills returns the known skills mentioned in the text.
func ExtractSkills(text string) []string {
	text = strings.ToLower(text)

	var skills []string
	for _, s := range skillPatterns {
		if strings.Contains(text, strings.ToLower(s)) {
			skills = append(skills, s)
		}
	}
	return skills
}

func DetectRemoteType(snippet, location string) RemoteType {
	text := strings.ToLower(snippet + " " + location)

	if strings.Contains(text, "remote") || strings.Contains(text, "work from home") {
		if strings.Contains(text, "hybrid") {
			return Hybrid
		}
		return Remote
	}
	return Onsite
}

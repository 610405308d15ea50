package angellist

import (
	"errors"
	"time"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

var errNoStartup = errors.New("job has no startup slug")

type startup struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Stage        string   `json:"stage"`
	CompanySize  string   `json:"company_size"`
	TotalFunding *float64 `json:"total_funding"`
	Investors    []string `json:"investors"`
	Location     string   `json:"location"`
	Markets      []string `json:"markets"`
	CultureTags  []string `json:"culture_tags"`
}

type job struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Startup             *startup `json:"startup"`
	SalaryMin           *float64 `json:"salary_min"`
	SalaryMax           *float64 `json:"salary_max"`
	EquityMin           *float64 `json:"equity_min"`
	EquityMax           *float64 `json:"equity_max"`
	Skills              []string `json:"skills"`
	MinExperience       *int     `json:"min_experience"`
	ApplicationDeadline string   `json:"application_deadline"`
	RemoteOK            bool     `json:"remote_ok"`
	VisaSponsored       bool     `json:"visa_sponsored"`
	RelocateAssistance  bool     `json:"relocate_assistance"`
	Benefits            []string `json:"benefits"`
}

func (j job) toOpportunity(now time.Time) (*opportunity.Opportunity, error) {
	if j.Startup == nil || j.Startup.Slug == "" {
		return nil, errNoStartup
	}

	o := opportunity.New(Platform, j.ID, companyURL+j.Startup.Slug+"/jobs/"+j.ID, now)
	o.Title = j.Title
	o.Description = j.Description
	o.RequiredSkills = j.Skills
	o.PayMin, o.PayMax = j.SalaryMin, j.SalaryMax
	o.PayType = opportunity.PayAnnual

	o.ClientInfo = &opportunity.ClientInfo{
		Name:      j.Startup.Name,
		Stage:     j.Startup.Stage,
		Size:      j.Startup.CompanySize,
		Funding:   j.Startup.TotalFunding,
		Investors: j.Startup.Investors,
		Location:  j.Startup.Location,
		Markets:   j.Startup.Markets,
	}

	if deadline, err := time.Parse(time.RFC3339, j.ApplicationDeadline); err == nil {
		deadline = deadline.UTC()
		o.ExpiresAt = &deadline
	}

	if j.EquityMin != nil {
		o.Metadata["equity_min"] = *j.EquityMin
	}
	if j.EquityMax != nil {
		o.Metadata["equity_max"] = *j.EquityMax
	}
	if j.MinExperience != nil {
		o.Metadata["experience_required"] = *j.MinExperience
	}
	o.Metadata["remote"] = j.RemoteOK
	o.Metadata["visa_sponsor"] = j.VisaSponsored
	o.Metadata["relocate_assistance"] = j.RelocateAssistance
	if len(j.Benefits) > 0 {
		o.Metadata["benefits"] = j.Benefits
	}
	if len(j.Startup.CultureTags) > 0 {
		o.Metadata["culture"] = j.Startup.CultureTags
	}

	return o, nil
}

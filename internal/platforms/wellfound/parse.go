package wellfound

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

var (
	fundingAmount = regexp.MustCompile(`([\d.]+)\s*([kmb])?`)
	percent       = regexp.MustCompile(`[\d.]+`)
)

type job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Remote      bool   `json:"remote"`
	Company     struct {
		Name    string `json:"name"`
		Stage   string `json:"stage"`
		Funding string `json:"funding"`
		Size    string `json:"size"`
	} `json:"company"`
	Salary struct {
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
		Equity string   `json:"equity"`
	} `json:"salary"`
}

func (j job) toOpportunity(now time.Time) *opportunity.Opportunity {
	o := opportunity.New(Platform, j.ID, jobURL+j.ID, now)
	o.Title = j.Title
	o.Description = j.Description
	o.PayMin, o.PayMax = j.Salary.Min, j.Salary.Max
	o.PayType = opportunity.PayAnnual

	o.ClientInfo = &opportunity.ClientInfo{
		Name:    j.Company.Name,
		Stage:   j.Company.Stage,
		Size:    j.Company.Size,
		Funding: ParseFunding(j.Company.Funding),
	}

	o.Metadata["remote_type"] = "onsite"
	if j.Remote {
		o.Metadata["remote_type"] = "remote"
	}
	o.Metadata["job_type"] = "full-time"
	o.Metadata["equity_available"] = j.Salary.Equity != ""
	if j.Salary.Equity != "" {
		o.Metadata["equity"] = j.Salary.Equity
	}
	if j.Company.Funding != "" {
		o.Metadata["funding"] = j.Company.Funding
	}

	return o
}

// ParseFunding reads amounts like "$10M" or "$750K". It returns nil for text
// without a number.
func ParseFunding(text string) *float64 {
	m := fundingAmount.FindStringSubmatch(strings.ToLower(strings.ReplaceAll(text, ",", "")))
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	switch m[2] {
	case "k":
		v *= 1e3
	case "m":
		v *= 1e6
	case "b":
		v *= 1e9
	}
	return &v
}

// equityPercent returns the first number of an equity range like "0.1-0.5%".
func equityPercent(equity string) (float64, bool) {
	m := percent.FindString(equity)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

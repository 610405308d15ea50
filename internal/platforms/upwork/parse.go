package upwork

import (
	"time"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

type job struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	JobType       string   `json:"job_type"`
	HourlyRateMin *float64 `json:"hourly_rate_min"`
	HourlyRateMax *float64 `json:"hourly_rate_max"`
	Budget        *float64 `json:"budget"`
	Skills        []string `json:"skills"`
	DatePosted    string   `json:"date_posted"`
	DateCreated   string   `json:"date_created"`
	Duration      string   `json:"duration"`
	Workload      string   `json:"workload"`
	Proposals     string   `json:"proposals"`
	Client        *client  `json:"client"`
}

type client struct {
	Feedback        *float64 `json:"feedback"`
	TotalSpent      *float64 `json:"total_spent"`
	HireRate        *float64 `json:"hire_rate"`
	Location        string   `json:"location"`
	PaymentVerified *bool    `json:"payment_verified"`
}

func (j job) toOpportunity(now time.Time) *opportunity.Opportunity {
	o := opportunity.New(Platform, j.ID, jobURL+j.ID, now)
	o.Title = j.Title
	o.Description = j.Description
	o.RequiredSkills = j.Skills
	o.PayType = opportunity.ParsePayType(j.JobType)
	o.PayMin, o.PayMax = j.pay()

	if j.DatePosted != "" {
		expires := o.DiscoveredAt.Add(listingTTL)
		o.ExpiresAt = &expires
	}

	if j.Client != nil {
		o.ClientInfo = &opportunity.ClientInfo{
			Rating:     j.Client.Feedback,
			TotalSpent: j.Client.TotalSpent,
			HireRate:   j.Client.HireRate,
			Location:   j.Client.Location,
			Verified:   j.Client.PaymentVerified,
		}
	}

	for key, value := range map[string]string{
		"duration":  j.Duration,
		"workload":  j.Workload,
		"posted_on": j.DateCreated,
		"proposals": j.Proposals,
	} {
		if value != "" {
			o.Metadata[key] = value
		}
	}

	return o
}

func (j job) pay() (*float64, *float64) {
	switch opportunity.ParsePayType(j.JobType) {
	case opportunity.PayHourly:
		return j.HourlyRateMin, j.HourlyRateMax
	case opportunity.PayFixed:
		return j.Budget, j.Budget
	default:
		return nil, nil
	}
}

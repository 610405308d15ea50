package freelancer

import (
	"time"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

type project struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	SeoURL        string `json:"seo_url"`
	Type          string `json:"type"`
	TimeSubmitted int64  `json:"time_submitted"`
	Featured      bool   `json:"featured"`
	Budget        *struct {
		Minimum *float64 `json:"minimum"`
		Maximum *float64 `json:"maximum"`
	} `json:"budget"`
	Jobs []struct {
		Name string `json:"name"`
	} `json:"jobs"`
	Currency *struct {
		Code string `json:"code"`
	} `json:"currency"`
	BidStats *struct {
		BidCount int      `json:"bid_count"`
		BidAvg   *float64 `json:"bid_avg"`
	} `json:"bid_stats"`
	OwnerReputation *struct {
		EntireHistory struct {
			Overall  *float64 `json:"overall"`
			Complete *int     `json:"complete"`
		} `json:"entire_history"`
	} `json:"owner_reputation"`
	Owner *struct {
		RegistrationDate string `json:"registration_date"`
		Status           struct {
			PaymentVerified *bool `json:"payment_verified"`
		} `json:"status"`
		Location struct {
			Country struct {
				Name string `json:"name"`
			} `json:"country"`
		} `json:"location"`
	} `json:"owner"`
}

func (p project) toOpportunity(now time.Time) *opportunity.Opportunity {
	o := opportunity.New(Platform, p.ID, projectURL+p.SeoURL, now)
	o.Title = p.Title
	o.Description = p.Description

	o.PayType = opportunity.PayHourly
	if p.Type == "fixed" {
		o.PayType = opportunity.PayFixed
	}
	if p.Budget != nil {
		o.PayMin, o.PayMax = p.Budget.Minimum, p.Budget.Maximum
	}

	for _, j := range p.Jobs {
		o.RequiredSkills = append(o.RequiredSkills, j.Name)
	}

	if p.TimeSubmitted > 0 {
		expires := time.Unix(p.TimeSubmitted, 0).UTC().Add(listingTTL)
		o.ExpiresAt = &expires
		o.Metadata["posted_on"] = p.TimeSubmitted
	}

	info := &opportunity.ClientInfo{}
	if p.OwnerReputation != nil {
		info.Rating = p.OwnerReputation.EntireHistory.Overall
		info.ProjectsCompleted = p.OwnerReputation.EntireHistory.Complete
	}
	if p.Owner != nil {
		info.Verified = p.Owner.Status.PaymentVerified
		info.Location = p.Owner.Location.Country.Name
		info.MemberSince = p.Owner.RegistrationDate
	}
	o.ClientInfo = info

	bids := 0
	if p.BidStats != nil {
		bids = p.BidStats.BidCount
		if p.BidStats.BidAvg != nil {
			o.Metadata["avg_bid"] = *p.BidStats.BidAvg
		}
	}
	o.Metadata["bid_count"] = bids

	currency := "USD"
	if p.Currency != nil && p.Currency.Code != "" {
		currency = p.Currency.Code
	}
	o.Metadata["currency"] = currency
	o.Metadata["featured"] = p.Featured

	return o
}

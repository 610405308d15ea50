package opportunity

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"
)

type PayType string

const (
	PayHourly PayType = "hourly"
	PayFixed  PayType = "fixed"
	PayAnnual PayType = "annual"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusReviewing Status = "reviewing"
	StatusApplied   Status = "applied"
	StatusRejected  Status = "rejected"
	StatusAccepted  Status = "accepted"
)

// ParseStatus converts a raw string to a Status, returning an error for unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNew, StatusReviewing, StatusApplied, StatusRejected, StatusAccepted:
		return st, nil
	}
	return "", fmt.Errorf("unknown opportunity status %q", s)
}

// ParsePayType normalizes the pay type spellings used by the sources.
func ParsePayType(s string) PayType {
	switch s {
	case "Hourly", "hourly", "hour":
		return PayHourly
	case "Fixed", "fixed", "fixed_price":
		return PayFixed
	case "annual", "yearly", "year", "Annual", "Yearly":
		return PayAnnual
	default:
		return ""
	}
}

// ClientInfo describes the counterpart of a listing: a freelance client,
// an employer or a startup. It is written once at discovery.
type ClientInfo struct {
	Name              string   `json:"name,omitempty"`
	Rating            *float64 `json:"rating,omitempty"`
	TotalSpent        *float64 `json:"total_spent,omitempty"`
	HireRate          *float64 `json:"hire_rate,omitempty"`
	ProjectsCompleted *int     `json:"projects_completed,omitempty"`
	Verified          *bool    `json:"verified,omitempty"`
	Location          string   `json:"location,omitempty"`
	MemberSince       string   `json:"member_since,omitempty"`
	Stage             string   `json:"stage,omitempty"`
	Funding           *float64 `json:"funding,omitempty"`
	Size              string   `json:"size,omitempty"`
	Investors         []string `json:"investors,omitempty"`
	Markets           []string `json:"markets,omitempty"`
}

type Opportunity struct {
	URL            string         `json:"url"`
	Platform       string         `json:"platform"`
	ExternalID     string         `json:"external_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	RequiredSkills []string       `json:"required_skills,omitempty"`
	PayMin         *float64       `json:"pay_min,omitempty"`
	PayMax         *float64       `json:"pay_max,omitempty"`
	PayType        PayType        `json:"pay_type,omitempty"`
	MatchScore     float64        `json:"match_score"`
	Status         Status         `json:"status"`
	ClientInfo     *ClientInfo    `json:"client_info,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	DiscoveredAt   time.Time      `json:"discovered_at"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
}

// New returns an opportunity discovered at the given moment with status new.
func New(platform, externalID, url string, discoveredAt time.Time) *Opportunity {
	return &Opportunity{
		Platform:     platform,
		ExternalID:   externalID,
		URL:          url,
		Status:       StatusNew,
		DiscoveredAt: discoveredAt.UTC(),
		Metadata:     make(map[string]any),
	}
}

// Clone returns a deep copy. Metadata values are copied one level deep.
func (o *Opportunity) Clone() *Opportunity {
	if o == nil {
		return nil
	}
	c := *o
	c.RequiredSkills = slices.Clone(o.RequiredSkills)
	c.PayMin = clonePtr(o.PayMin)
	c.PayMax = clonePtr(o.PayMax)
	c.ExpiresAt = clonePtr(o.ExpiresAt)
	c.ClientInfo = o.ClientInfo.Clone()
	if o.Metadata != nil {
		c.Metadata = maps.Clone(o.Metadata)
	}
	return &c
}

func (c *ClientInfo) Clone() *ClientInfo {
	if c == nil {
		return nil
	}
	out := *c
	out.Rating = clonePtr(c.Rating)
	out.TotalSpent = clonePtr(c.TotalSpent)
	out.HireRate = clonePtr(c.HireRate)
	out.ProjectsCompleted = clonePtr(c.ProjectsCompleted)
	out.Verified = clonePtr(c.Verified)
	out.Funding = clonePtr(c.Funding)
	out.Investors = slices.Clone(c.Investors)
	out.Markets = slices.Clone(c.Markets)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Expired reports whether the listing has an expiry before now.
func (o *Opportunity) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && o.ExpiresAt.Before(now)
}

func (o *Opportunity) PayRange() string {
	switch {
	case o.PayMin == nil && o.PayMax == nil:
		return "n/a"
	case o.PayMax == nil || (o.PayMin != nil && *o.PayMin == *o.PayMax):
		return fmt.Sprintf("%.0f %s", *o.PayMin, o.PayType)
	case o.PayMin == nil:
		return fmt.Sprintf("up to %.0f %s", *o.PayMax, o.PayType)
	default:
		return fmt.Sprintf("%.0f-%.0f %s", *o.PayMin, *o.PayMax, o.PayType)
	}
}

type Opportunities struct {
	Items []*Opportunity
}

func (v *Opportunities) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

func (v *Opportunities) Append(items ...*Opportunity) {
	v.Items = append(v.Items, items...)
}

// Dedup drops listings that repeat an external id already seen earlier in
// the list. Order of the kept items is preserved. Returns the dropped ids.
func (v *Opportunities) Dedup() []string {
	seen := make(map[string]struct{}, len(v.Items))
	kept := v.Items[:0]
	var dropped []string

	for _, o := range v.Items {
		if _, ok := seen[o.ExternalID]; ok {
			dropped = append(dropped, o.ExternalID)
			continue
		}
		seen[o.ExternalID] = struct{}{}
		kept = append(kept, o)
	}

	for i := len(kept); i < len(v.Items); i++ {
		v.Items[i] = nil
	}
	v.Items = kept

	return dropped
}

// Filter keeps the items for which keep returns true, preserving order.
// It returns the external ids of the removed items.
func (v *Opportunities) Filter(keep func(*Opportunity) bool) []string {
	kept := make([]*Opportunity, 0, len(v.Items))
	var removed []string
	for _, o := range v.Items {
		if keep(o) {
			kept = append(kept, o)
			continue
		}
		removed = append(removed, o.ExternalID)
	}
	v.Items = kept
	return removed
}

// ReportByPlatform groups listings by platform for a human readable dump.
func (v *Opportunities) ReportByPlatform() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, o := range v.Items {
		report[o.Platform] = append(report[o.Platform], map[string]string{
			"title": o.Title,
			"url":   o.URL,
			"pay":   o.PayRange(),
			"score": fmt.Sprintf("%.2f", o.MatchScore),
		})
	}
	return report
}

func (v *Opportunities) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "opportunities_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

func Bool(v bool) *bool { return &v }

package opportunity

import (
	"encoding/json"
	"os"
	"time"
)

// Excluded is a listing the user chose to never see again.
type Excluded struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	URL        string    `json:"url"`
	ClientName string    `json:"client_name,omitempty"`
	ExcludedAt time.Time `json:"excluded_at"`
}

type ExcludedList struct {
	Items []*Excluded
}

func (v *Opportunities) ToExcluded(now time.Time) *ExcludedList {
	excluded := &ExcludedList{}
	for _, o := range v.Items {
		name := ""
		if o.ClientInfo != nil {
			name = o.ClientInfo.Name
		}
		excluded.Items = append(excluded.Items, &Excluded{
			ID:         o.ExternalID,
			Platform:   o.Platform,
			URL:        o.URL,
			ClientName: name,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// ExcludedFromFile reads an exclude file. A missing or empty file is an empty list.
func ExcludedFromFile(path string) (*ExcludedList, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return &ExcludedList{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedList{}, nil
	}

	var excluded ExcludedList
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (v *ExcludedList) Append(s *ExcludedList) {
	v.Items = append(v.Items, s.Items...)
}

// Contains reports whether o was excluded by URL or by platform and external id.
func (v *ExcludedList) Contains(o *Opportunity) bool {
	for _, e := range v.Items {
		if e.URL != "" && e.URL == o.URL {
			return true
		}
		if e.ID != "" && e.ID == o.ExternalID && e.Platform == o.Platform {
			return true
		}
	}
	return false
}

func (v *ExcludedList) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return nil
}

package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

type redFlagsFilter struct {
	toggle
	flags []string
}

// NewRedFlags creates a filter that removes opportunities mentioning any of
// the terms in the title, client name or description.
func NewRedFlags(flags []string) Filter {
	cleaned := make([]string, 0, len(flags))
	for _, flag := range flags {
		if flag = strings.ToLower(strings.TrimSpace(flag)); flag != "" {
			cleaned = append(cleaned, flag)
		}
	}
	return &redFlagsFilter{flags: cleaned}
}

func (f *redFlagsFilter) Name() string { return "red_flags" }

func (f *redFlagsFilter) Validate() error { return nil }

func (f *redFlagsFilter) Apply(_ context.Context, deps Deps, v *opportunity.Opportunities) (*opportunity.Opportunities, Step, error) {
	initial := v.Len()
	if len(f.flags) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.Filter(func(o *opportunity.Opportunity) bool {
		return !ContainsRedFlag(o, f.flags)
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding opportunities with red flags",
			zap.Strings("excluded_opportunities", excluded),
			zap.Int("opportunities_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *redFlagsFilter) Status() Status {
	details := map[string]string{}
	if len(f.flags) > 0 {
		details["red_flags"] = strings.Join(f.flags, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// ContainsRedFlag reports whether any lower-cased flag appears in the
// combined title, client name and description.
func ContainsRedFlag(o *opportunity.Opportunity, flags []string) bool {
	if len(flags) == 0 {
		return false
	}

	company := ""
	if o.ClientInfo != nil {
		company = o.ClientInfo.Name
	}
	combined := strings.ToLower(o.Title + " " + company + " " + o.Description)
	for _, flag := range flags {
		if flag == "" {
			continue
		}
		if strings.Contains(combined, flag) {
			return true
		}
	}
	return false
}

package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

type clientsFilter struct {
	toggle
	clients map[string]struct{}
	names   []string
}

// NewClients creates a filter that removes opportunities posted by the listed
// clients or companies. Names are compared case-insensitively.
func NewClients(clients []string) Filter {
	f := &clientsFilter{clients: make(map[string]struct{}, len(clients))}
	for _, c := range clients {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			continue
		}
		f.clients[key] = struct{}{}
		f.names = append(f.names, c)
	}
	return f
}

func (f *clientsFilter) Name() string { return "clients" }

func (f *clientsFilter) Validate() error { return nil }

func (f *clientsFilter) Apply(_ context.Context, deps Deps, v *opportunity.Opportunities) (*opportunity.Opportunities, Step, error) {
	initial := v.Len()
	if len(f.clients) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.Filter(func(o *opportunity.Opportunity) bool {
		if o.ClientInfo == nil {
			return true
		}
		_, blocked := f.clients[strings.ToLower(strings.TrimSpace(o.ClientInfo.Name))]
		return !blocked
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding opportunities by clients",
			zap.Strings("excluded_clients", f.names),
			zap.Strings("excluded_opportunities", excluded),
			zap.Int("opportunities_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *clientsFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["clients"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// Package storage defines the persistence contract of the pipeline and an
// in-memory implementation. SQL and stream backends live in subpackages.
package storage

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

var ErrInvalidOpportunity = errors.New("opportunity url is required")

// OpportunityStore keeps opportunities keyed by URL. Upsert of a known URL
// only updates match_score and status.
type OpportunityStore interface {
	Upsert(ctx context.Context, o *opportunity.Opportunity) error
	Query(ctx context.Context, f Filter) ([]*opportunity.Opportunity, error)
}

// HuntLogStore is append-only.
type HuntLogStore interface {
	Append(ctx context.Context, l *opportunity.HuntLog) error
	List(ctx context.Context, limit int) ([]*opportunity.HuntLog, error)
}

// Filter narrows Query. Zero values mean no restriction.
type Filter struct {
	Status   opportunity.Status
	MinScore *float64
	Platform string
	Limit    int
}

func (f Filter) Match(o *opportunity.Opportunity) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.MinScore != nil && o.MatchScore < *f.MinScore {
		return false
	}
	if f.Platform != "" && o.Platform != f.Platform {
		return false
	}
	return true
}

// SortOpportunities orders by score then discovery time, both descending.
func SortOpportunities(items []*opportunity.Opportunity) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].MatchScore != items[j].MatchScore {
			return items[i].MatchScore > items[j].MatchScore
		}
		return items[i].DiscoveredAt.After(items[j].DiscoveredAt)
	})
}

// SortHuntLogs orders by start time, newest first.
func SortHuntLogs(items []*opportunity.HuntLog) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartedAt.After(items[j].StartedAt)
	})
}

// Where renders the filter as a SQL condition over the opportunities table
// columns. placeholder returns the bind marker for the n-th argument, 1-based.
func (f Filter) Where(placeholder func(n int) string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+" "+placeholder(len(args)))
	}

	if f.Status != "" {
		add("status =", string(f.Status))
	}
	if f.MinScore != nil {
		add("match_score >=", *f.MinScore)
	}
	if f.Platform != "" {
		add("platform =", f.Platform)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

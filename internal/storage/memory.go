package storage

import (
	"context"
	"sync"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

// Memory is a process-local store. It is safe for concurrent use.
type Memory struct {
	mu            sync.RWMutex
	opportunities map[string]*opportunity.Opportunity
	order         []string
	logs          []*opportunity.HuntLog
}

func NewMemory() *Memory {
	return &Memory{
		opportunities: make(map[string]*opportunity.Opportunity),
	}
}

func (m *Memory) Upsert(ctx context.Context, o *opportunity.Opportunity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o == nil || o.URL == "" {
		return ErrInvalidOpportunity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.opportunities[o.URL]; ok {
		existing.MatchScore = o.MatchScore
		existing.Status = o.Status
		return nil
	}

	m.opportunities[o.URL] = o.Clone()
	m.order = append(m.order, o.URL)
	return nil
}

func (m *Memory) Query(ctx context.Context, f Filter) ([]*opportunity.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []*opportunity.Opportunity
	for _, url := range m.order {
		o := m.opportunities[url]
		if f.Match(o) {
			items = append(items, o.Clone())
		}
	}

	SortOpportunities(items)
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items, nil
}

func (m *Memory) Append(ctx context.Context, l *opportunity.HuntLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := *l
	m.logs = append(m.logs, &c)
	return nil
}

func (m *Memory) List(ctx context.Context, limit int) ([]*opportunity.HuntLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	items := make([]*opportunity.HuntLog, 0, len(m.logs))
	for _, l := range m.logs {
		c := *l
		items = append(items, &c)
	}
	m.mu.RUnlock()

	SortHuntLogs(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

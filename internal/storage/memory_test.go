package storage

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

func TestMemoryUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	first := opportunity.New("upwork", "1", "https://u/1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	first.MatchScore = 0.7
	first.Metadata["workload"] = "Less than 10 hrs/week"
	require.NoError(t, store.Upsert(ctx, first))

	again := opportunity.New("upwork", "1", "https://u/1", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	again.MatchScore = 0.9
	again.Status = opportunity.StatusReviewing
	again.ClientInfo = &opportunity.ClientInfo{Name: "changed"}
	require.NoError(t, store.Upsert(ctx, again))

	items, err := store.Query(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, first.DiscoveredAt, got.DiscoveredAt)
	assert.Equal(t, 0.9, got.MatchScore)
	assert.Equal(t, opportunity.StatusReviewing, got.Status)
	assert.Nil(t, got.ClientInfo)
	assert.Equal(t, "Less than 10 hrs/week", got.Metadata["workload"])
}

func TestMemoryUpsertRequiresURL(t *testing.T) {
	assert.ErrorIs(t, NewMemory().Upsert(context.Background(), &opportunity.Opportunity{}), ErrInvalidOpportunity)
}

func TestMemoryQueryFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	add := func(url, platform string, score float64, offset time.Duration) {
		o := opportunity.New(platform, url, url, base.Add(offset))
		o.MatchScore = score
		require.NoError(t, store.Upsert(ctx, o))
	}
	add("a", "upwork", 0.7, 0)
	add("b", "upwork", 0.9, 0)
	add("c", "upwork", 0.7, time.Hour)
	add("d", "indeed", 0.95, 0)

	items, err := store.Query(ctx, Filter{Platform: "upwork", MinScore: opportunity.Float(0.7)})
	require.NoError(t, err)

	var urls []string
	for _, o := range items {
		urls = append(urls, o.URL)
	}
	assert.Equal(t, []string{"b", "c", "a"}, urls)

	items, err = store.Query(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "d", items[0].URL)

	items, err = store.Query(ctx, Filter{Status: opportunity.StatusApplied})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Upsert(ctx, opportunity.New("upwork", "1", "https://u/1", time.Now()))
		}()
	}
	wg.Wait()

	items, err := store.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMemoryHuntLogs(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, &opportunity.HuntLog{
			ID:        string(rune('a' + i)),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Status:    opportunity.HuntCompleted,
		}))
	}

	logs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "c", logs[0].ID)
	assert.Equal(t, "b", logs[1].ID)
}

func TestFilterWhere(t *testing.T) {
	dollar := func(n int) string { return "$" + strconv.Itoa(n) }

	where, args := Filter{}.Where(dollar)
	assert.Empty(t, where)
	assert.Empty(t, args)

	minScore := 0.7
	where, args = Filter{Status: opportunity.StatusNew, MinScore: &minScore, Platform: "indeed", Limit: 5}.Where(dollar)
	assert.Equal(t, " WHERE status = $1 AND match_score >= $2 AND platform = $3", where)
	assert.Equal(t, []any{"new", 0.7, "indeed"}, args)

	where, _ = Filter{Platform: "upwork"}.Where(func(int) string { return "?" })
	assert.Equal(t, " WHERE platform = ?", where)
}

func TestMemoryDoesNotShareStoredFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	o := opportunity.New("upwork", "~01", "https://www.upwork.com/jobs/~01", time.Now())
	o.Metadata["workload"] = "Less than 10 hrs/week"
	o.RequiredSkills = []string{"Go"}
	o.ClientInfo = &opportunity.ClientInfo{Name: "Acme", Rating: opportunity.Float(4.9)}
	require.NoError(t, m.Upsert(ctx, o))

	o.Metadata["workload"] = "More than 30 hrs/week"
	o.RequiredSkills[0] = "COBOL"
	*o.ClientInfo.Rating = 1

	items, err := m.Query(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Less than 10 hrs/week", items[0].Metadata["workload"])
	assert.Equal(t, []string{"Go"}, items[0].RequiredSkills)
	assert.Equal(t, 4.9, *items[0].ClientInfo.Rating)

	items[0].Metadata["workload"] = "rewritten"
	items[0].ClientInfo.Name = "Other"

	again, err := m.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, "Less than 10 hrs/week", again[0].Metadata["workload"])
	assert.Equal(t, "Acme", again[0].ClientInfo.Name)
}

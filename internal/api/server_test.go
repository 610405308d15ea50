package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/gig-hunter/internal/metrics"
	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/storage"
)

type brokenStore struct{}

func (brokenStore) Upsert(context.Context, *opportunity.Opportunity) error { return nil }

func (brokenStore) Query(context.Context, storage.Filter) ([]*opportunity.Opportunity, error) {
	return nil, errors.New("connection refused")
}

func seeded(t *testing.T) *storage.Memory {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemory()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, score := range []float64{0.7, 0.95, 0.8} {
		o := opportunity.New("indeed", string(rune('a'+i)), "https://i/"+string(rune('a'+i)), now)
		o.MatchScore = score
		require.NoError(t, store.Upsert(ctx, o))
	}
	require.NoError(t, store.Append(ctx, &opportunity.HuntLog{ID: "1", HuntName: "indeed-scanner", StartedAt: now, Status: opportunity.HuntCompleted}))
	return store
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestOpportunities(t *testing.T) {
	store := seeded(t)
	h := NewServer(store, store, nil, nil).Handler()

	rec := get(t, h, "/api/opportunities?min_score=0.75&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Opportunities []opportunity.Opportunity `json:"opportunities"`
		Count         int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "b", body.Opportunities[0].ExternalID)
	assert.Equal(t, "c", body.Opportunities[1].ExternalID)
}

func TestOpportunitiesBadQuery(t *testing.T) {
	store := seeded(t)
	h := NewServer(store, store, nil, nil).Handler()

	for _, target := range []string{
		"/api/opportunities?status=archived",
		"/api/opportunities?min_score=2",
		"/api/opportunities?limit=-1",
		"/api/hunt-logs?limit=x",
	} {
		assert.Equal(t, http.StatusBadRequest, get(t, h, target).Code, target)
	}
}

func TestOpportunitiesStoreFailure(t *testing.T) {
	h := NewServer(brokenStore{}, storage.NewMemory(), nil, nil).Handler()

	rec := get(t, h, "/api/opportunities")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHuntLogs(t *testing.T) {
	store := seeded(t)
	h := NewServer(store, store, nil, nil).Handler()

	rec := get(t, h, "/api/hunt-logs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hunt_name":"indeed-scanner"`)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), `"failed":0`)
}

func TestHuntLogsCountsFailures(t *testing.T) {
	store := storage.NewMemory()
	msg := "scan: context canceled"
	for _, status := range []opportunity.HuntStatus{opportunity.HuntCompleted, opportunity.HuntFailed, opportunity.HuntCancelled} {
		require.NoError(t, store.Append(context.Background(), &opportunity.HuntLog{
			ID:           string(status),
			HuntName:     "upwork-scanner",
			Platform:     "upwork",
			StartedAt:    time.Now(),
			Status:       status,
			ErrorMessage: &msg,
		}))
	}

	rec := get(t, NewServer(store, store, nil, nil).Handler(), "/api/hunt-logs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":3`)
	assert.Contains(t, rec.Body.String(), `"failed":2`)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveHunt("indeed", "completed", time.Second)

	store := storage.NewMemory()
	h := NewServer(store, store, reg, nil).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "gighunter_hunts_total"))
}

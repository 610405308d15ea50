package source

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type job struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Rate      *float64 `json:"rate"`
	Skills    []string `json:"skills"`
	Proposals int      `json:"proposals"`
}

func TestGetItemsDecodesNestedList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(`{"result":{"jobs":[
			{"id": 12345678901, "title": "Go API", "rate": "80.50", "skills": ["Go"], "proposals": "7"},
			{"id": "abc", "title": "Scraper"}
		]}}`))
	}))
	defer server.Close()

	client := New(nil, 0)
	client.Header.Set("X-Api-Key", "secret")

	var jobs []job
	err := client.GetItems(context.Background(), server.URL, url.Values{"q": {"golang"}}, "result.jobs", &jobs)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "12345678901", jobs[0].ID)
	require.NotNil(t, jobs[0].Rate)
	assert.InDelta(t, 80.5, *jobs[0].Rate, 1e-9)
	assert.Equal(t, 7, jobs[0].Proposals)
	assert.Nil(t, jobs[1].Rate)
}

func TestGetItemsMissingPathIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "nothing"}`))
	}))
	defer server.Close()

	var jobs []job
	require.NoError(t, New(nil, 0).GetItems(context.Background(), server.URL, nil, "jobs", &jobs))
	assert.Empty(t, jobs)
}

func TestGetItemsHandlesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`{"jobs": [{"title": "compressed"}]}`))
		_ = gz.Close()
	}))
	defer server.Close()

	var out []job
	require.NoError(t, New(nil, 0).GetItems(context.Background(), server.URL, nil, "jobs", &out))
	require.Len(t, out, 1)
	assert.Equal(t, "compressed", out[0].Title)
}

func TestBadStatusIsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer server.Close()

	var out []job
	err := New(nil, 0).GetItems(context.Background(), server.URL, nil, "jobs", &out)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
}

func TestGetDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><ul><li class="feature"><span class="title">Go dev</span></li></ul></body></html>`))
	}))
	defer server.Close()

	doc, err := New(nil, 0).GetDocument(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "Go dev", doc.Find("li.feature .title").Text())
}

func TestLookup(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": []any{1}}}

	v, ok := Lookup(data, "a.b")
	assert.True(t, ok)
	assert.Len(t, v, 1)

	_, ok = Lookup(data, "a.c")
	assert.False(t, ok)

	_, ok = Lookup(data, "a.b.c")
	assert.False(t, ok)
}

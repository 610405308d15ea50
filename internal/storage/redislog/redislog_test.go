package redislog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

func TestDecode(t *testing.T) {
	logs, err := Decode([]redis.XMessage{
		{ID: "2-0", Values: map[string]any{"log": `{"id":"b","hunt_name":"indeed-scanner","status":"failed","error_message":"boom"}`}},
		{ID: "1-0", Values: map[string]any{"log": `{"id":"a","hunt_name":"upwork-scanner","status":"completed"}`}},
	})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, opportunity.HuntFailed, logs[0].Status)
	assert.Equal(t, "boom", *logs[0].ErrorMessage)
	assert.Nil(t, logs[1].ErrorMessage)

	_, err = Decode([]redis.XMessage{{ID: "3-0", Values: map[string]any{"other": "x"}}})
	assert.Error(t, err)

	_, err = Decode([]redis.XMessage{{ID: "4-0", Values: map[string]any{"log": "{"}}})
	assert.Error(t, err)
}

// Needs a scratch Redis, e.g. GIG_HUNTER_TEST_REDIS_URL=redis://localhost:6379/15
func TestAppendAndList(t *testing.T) {
	url := os.Getenv("GIG_HUNTER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("GIG_HUNTER_TEST_REDIS_URL is not set")
	}

	ctx := context.Background()
	rdb, err := Connect(ctx, url)
	require.NoError(t, err)

	stream := "gighunter:test:" + uuid.NewString()
	s := New(rdb, stream, 1000)
	t.Cleanup(func() {
		rdb.Del(context.Background(), stream)
		_ = s.Close()
	})

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, &opportunity.HuntLog{
			ID:          uuid.NewString(),
			HuntName:    "wellfound-scanner",
			Platform:    "wellfound",
			StartedAt:   start.Add(time.Duration(i) * time.Minute),
			CompletedAt: start.Add(time.Duration(i)*time.Minute + time.Second),
			Status:      opportunity.HuntCompleted,
		}))
	}

	logs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, start.Add(2*time.Minute), logs[0].StartedAt)
	assert.Equal(t, start.Add(time.Minute), logs[1].StartedAt)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNewDefaults(t *testing.T) {
	s := New(nil, "", -1)
	assert.Equal(t, DefaultStream, s.stream)
	assert.Zero(t, s.maxLen)

	s = New(nil, "custom", 500)
	assert.Equal(t, "custom", s.stream)
	assert.Equal(t, int64(500), s.maxLen)
}

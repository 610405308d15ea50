// Package redislog keeps hunt logs in a Redis stream.
package redislog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/storage"
)

const (
	DefaultStream = "gighunter:hunt_logs"
	field         = "log"
)

type Store struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

// Connect parses a redis:// URL and checks the connection.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// New returns a store on stream. maxLen approximately caps the stream, zero
// keeps every entry.
func New(rdb *redis.Client, stream string, maxLen int64) *Store {
	if stream == "" {
		stream = DefaultStream
	}
	if maxLen < 0 {
		maxLen = 0
	}
	return &Store{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (s *Store) Append(ctx context.Context, l *opportunity.HuntLog) error {
	data, err := json.Marshal(l)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{field: string(data)},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("append hunt log: %w", err)
	}
	return nil
}

// List reads the newest entries and orders them by started_at. Entries are
// appended on completion, so with a limit the window is the last completed
// runs.
func (s *Store) List(ctx context.Context, limit int) ([]*opportunity.HuntLog, error) {
	var (
		msgs []redis.XMessage
		err  error
	)
	if limit > 0 {
		msgs, err = s.rdb.XRevRangeN(ctx, s.stream, "+", "-", int64(limit)).Result()
	} else {
		msgs, err = s.rdb.XRevRange(ctx, s.stream, "+", "-").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("read hunt logs: %w", err)
	}

	logs, err := Decode(msgs)
	if err != nil {
		return nil, err
	}
	storage.SortHuntLogs(logs)
	return logs, nil
}

// Decode converts stream entries to hunt logs.
func Decode(msgs []redis.XMessage) ([]*opportunity.HuntLog, error) {
	logs := make([]*opportunity.HuntLog, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values[field].(string)
		if !ok {
			return nil, fmt.Errorf("stream entry %s has no %q field", msg.ID, field)
		}

		var l opportunity.HuntLog
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			return nil, fmt.Errorf("decode stream entry %s: %w", msg.ID, err)
		}
		logs = append(logs, &l)
	}
	return logs, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

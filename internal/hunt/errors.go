package hunt

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks a failed query. The scan skips it and continues.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoQueries means the skills produced no mappable query. The scan is empty.
	ErrNoQueries = errors.New("no mappable query for the given skills")
	// ErrUnknownPlatform is returned by the registry for unregistered platforms.
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrDisabled is returned by the registry for platforms switched off in config.
	ErrDisabled = errors.New("platform disabled")
)

// PersistenceError is a failed upsert or hunt log write. It aborts the run.
type PersistenceError struct {
	Op  string
	URL string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Unavailable wraps a per-query fetch failure.
func Unavailable(query string, err error) error {
	return fmt.Errorf("query %q: %w: %w", query, ErrSourceUnavailable, err)
}

// IsCancellation reports whether err comes from a cancelled or expired context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrProfileMissing means discovery ran before profile creation finished.
	// It is not retried.
	ErrProfileMissing = errors.New("profile missing for matching snapshot")

	// ErrRateLimitExceeded matches any RateLimitError via errors.Is.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrSelfInteraction rejects an interaction whose actor is also its target.
	ErrSelfInteraction = errors.New("actor and target must differ")
)

// RateLimitError reports which rolling quota an actor ran into.
type RateLimitError struct {
	Kind  string
	Limit int64
	Count int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s %d/%d in the last 24h", e.Kind, e.Count, e.Limit)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

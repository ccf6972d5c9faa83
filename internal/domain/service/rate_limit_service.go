package service

import (
	"context"
	"time"
)

// Decision is the outcome of a rate-limit check, carrying everything a
// transport layer needs to populate response headers.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RateLimitService applies per-identifier sliding-window limits. Operations
// without a configured rule fall back to the default rule.
type RateLimitService interface {
	// Check records one attempt for identifier under operation and reports
	// whether it is within the window. A denied decision carries RetryAfter,
	// the time until the oldest in-window entry ages out.
	Check(ctx context.Context, identifier, operation string) (*Decision, error)

	// Reset clears the window for identifier under operation.
	Reset(ctx context.Context, identifier, operation string) error
}

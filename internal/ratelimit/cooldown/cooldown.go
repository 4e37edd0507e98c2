// Package cooldown enforces the minimum interval between accepted submission
// attempts from one client. It is an advisory throttle against accidental
// rapid resubmission, not a security control; authoritative write rules live
// store-side.
package cooldown

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	dErrors "udonmap/pkg/domain-errors"
)

// Store persists the last accepted submission time per client key.
type Store interface {
	// LastAccepted returns the stored timestamp, or the zero time when the
	// key has never been recorded (or the record expired).
	LastAccepted(ctx context.Context, key string) (time.Time, error)
	// Record stores the last accepted timestamp, retained at least ttl.
	Record(ctx context.Context, key string, t time.Time, ttl time.Duration) error
}

type Service struct {
	store  Store
	window time.Duration
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, window time.Duration, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cooldown store is required")
	}
	if window <= 0 {
		return nil, fmt.Errorf("cooldown window must be positive")
	}
	svc := &Service{store: store, window: window, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check rejects an attempt made within the cooldown window of the last
// accepted submission, reporting the remaining wait rounded up to whole
// seconds. Recording happens separately; the lifecycle manager only advances
// the timestamp after the submission actually persisted.
func (s *Service) Check(ctx context.Context, key string, now time.Time) error {
	last, err := s.store.LastAccepted(ctx, sanitizeKey(key))
	if err != nil {
		// The limiter is advisory: a broken limiter store must not block
		// submissions, so failures degrade to allowing the attempt.
		s.logger.WarnContext(ctx, "cooldown store read failed, allowing attempt",
			"error", err.Error())
		return nil
	}
	if last.IsZero() {
		return nil
	}
	elapsed := now.Sub(last)
	if elapsed >= s.window {
		return nil
	}
	retryAfter := int(math.Ceil((s.window - elapsed).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return dErrors.Newf(dErrors.CodeRateLimited,
		"submissions are limited to one per %d seconds; retry in %d seconds",
		int(s.window.Seconds()), retryAfter).
		WithDetail("retry_after_seconds", retryAfter)
}

// Record advances the last-accepted timestamp for the key.
func (s *Service) Record(ctx context.Context, key string, now time.Time) error {
	return s.store.Record(ctx, sanitizeKey(key), now, s.window)
}

// sanitizeKey escapes the delimiter so user-controlled identifiers cannot
// collide with adjacent keys.
func sanitizeKey(key string) string {
	return "submit:" + strings.ReplaceAll(key, ":", "_")
}

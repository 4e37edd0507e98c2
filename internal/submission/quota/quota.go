// Package quota guards the per-user cap on simultaneously pending
// submissions. Like the cooldown it is advisory; store-side rules are the
// security boundary.
package quota

import (
	"context"
	"fmt"

	"udonmap/internal/submission/ports"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
)

type Guard struct {
	store ports.Store
	limit int
}

func New(store ports.Store, limit int) (*Guard, error) {
	if store == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("pending limit must be positive")
	}
	return &Guard{store: store, limit: limit}, nil
}

// Limit returns the configured pending cap.
func (g *Guard) Limit() int { return g.limit }

// HasCapacity reports whether the user's pending count is strictly below the
// limit. Evaluated fresh on every call: quota frees up asynchronously as
// moderators decide, so caching here would reject users who have capacity.
func (g *Guard) HasCapacity(ctx context.Context, userID id.UserID) (bool, error) {
	count, err := g.store.CountPending(ctx, userID, g.limit)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count pending submissions")
	}
	return count < g.limit, nil
}

// Package engine keeps a per-user local mirror of the remote favorite set.
// Toggles flip the mirror first and confirm against the store afterwards;
// a failed or timed-out write rolls the mirror back. Watch snapshots replace
// the mirror wholesale, so a missed rollback heals on the next snapshot.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/platform/optimistic"
	"udonmap/pkg/requestcontext"
)

// Store is the remote favorites collection the engine mirrors.
type Store interface {
	Add(ctx context.Context, userID id.UserID, shopID id.ShopID, at time.Time) error
	Remove(ctx context.Context, userID id.UserID, shopID id.ShopID) error
	List(ctx context.Context, userID id.UserID) ([]id.ShopID, error)
	Watch(ctx context.Context, userID id.UserID) (<-chan []id.ShopID, error)
}

// Listener receives the mirror after every visible change, including the
// immediate optimistic flip and its rollback.
type Listener func(shopIDs []id.ShopID)

// Engine mirrors one user's favorite set.
type Engine struct {
	userID       id.UserID
	store        Store
	writeTimeout time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	mirror   map[id.ShopID]struct{}
	tracker  *optimistic.Projection
	listener Listener
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithListener sets the callback notified on every mirror change.
func WithListener(listener Listener) Option {
	return func(e *Engine) { e.listener = listener }
}

func New(userID id.UserID, store Store, writeTimeout time.Duration, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "favorites store is required")
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	e := &Engine{
		userID:       userID,
		store:        store,
		writeTimeout: writeTimeout,
		logger:       slog.Default(),
		mirror:       make(map[id.ShopID]struct{}),
		tracker:      optimistic.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Toggle flips the shop's favorite mark. The mirror (and listener) reflect
// the flip immediately; the remote write confirms it within the write
// timeout. On failure the flip is rolled back and the error carries the
// remote-write code so callers can tell the user the mark did not stick.
func (e *Engine) Toggle(ctx context.Context, shopID id.ShopID) (bool, error) {
	key := shopID.String()

	e.mu.Lock()
	_, wasFavorite := e.mirror[shopID]
	nowFavorite := !wasFavorite
	e.setLocked(shopID, nowFavorite)
	e.tracker.Apply(key)
	e.notifyLocked()
	e.mu.Unlock()

	e.tracker.Reconcile(key)
	writeCtx, cancel := context.WithTimeout(ctx, e.writeTimeout)
	defer cancel()

	var err error
	if nowFavorite {
		err = e.store.Add(writeCtx, e.userID, shopID, requestcontext.Now(ctx))
	} else {
		err = e.store.Remove(writeCtx, e.userID, shopID)
	}
	if err != nil {
		e.mu.Lock()
		e.setLocked(shopID, wasFavorite)
		e.tracker.Rollback(key)
		e.notifyLocked()
		e.mu.Unlock()

		e.logger.WarnContext(ctx, "favorite write failed, rolled back",
			"shop_id", shopID,
			"favorite", nowFavorite,
			"error", err.Error(),
		)
		return wasFavorite, dErrors.Wrap(err, dErrors.CodeRemoteWrite,
			"could not save the favorite change; it has been reverted")
	}

	e.tracker.Settle(key)
	return nowFavorite, nil
}

// IsFavorite reports the mirror's current view of shopID.
func (e *Engine) IsFavorite(shopID id.ShopID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.mirror[shopID]
	return ok
}

// Snapshot returns the mirror's current shop ids, sorted for stable output.
func (e *Engine) Snapshot() []id.ShopID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Run subscribes to the store's change stream and replaces the mirror with
// every snapshot until ctx is cancelled. Snapshots win over local state;
// they are the source of truth after reconnects and missed rollbacks.
func (e *Engine) Run(ctx context.Context) error {
	updates, err := e.store.Watch(ctx, e.userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not subscribe to favorite changes")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-updates:
			if !ok {
				return nil
			}
			e.replace(snapshot)
		}
	}
}

func (e *Engine) replace(snapshot []id.ShopID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mirror = make(map[id.ShopID]struct{}, len(snapshot))
	for _, shopID := range snapshot {
		e.mirror[shopID] = struct{}{}
	}
	e.notifyLocked()
}

func (e *Engine) setLocked(shopID id.ShopID, favorite bool) {
	if favorite {
		e.mirror[shopID] = struct{}{}
		return
	}
	delete(e.mirror, shopID)
}

func (e *Engine) snapshotLocked() []id.ShopID {
	ids := make([]id.ShopID, 0, len(e.mirror))
	for shopID := range e.mirror {
		ids = append(ids, shopID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (e *Engine) notifyLocked() {
	if e.listener == nil {
		return
	}
	e.listener(e.snapshotLocked())
}

package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	catalogmodels "udonmap/internal/catalog/models"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/requestcontext"
)

// ShopReader resolves favorite ids to catalog records.
type ShopReader interface {
	Get(ctx context.Context, shopID id.ShopID) (*catalogmodels.ShopRecord, error)
}

// Manager lazily creates one engine per authenticated user and owns each
// engine's standing watch goroutine. Engines live until the manager's root
// context is cancelled at shutdown.
type Manager struct {
	store        Store
	shops        ShopReader
	writeTimeout time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	root    context.Context
	cancel  context.CancelFunc
	engines map[id.UserID]*Engine
}

type ManagerOption func(*Manager)

func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

func NewManager(store Store, shops ShopReader, writeTimeout time.Duration, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "favorites store is required")
	}
	if shops == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "shop reader is required")
	}
	root, cancel := context.WithCancel(context.Background())
	m := &Manager{
		store:        store,
		shops:        shops,
		writeTimeout: writeTimeout,
		logger:       slog.Default(),
		root:         root,
		cancel:       cancel,
		engines:      make(map[id.UserID]*Engine),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Close stops every engine's watch goroutine.
func (m *Manager) Close() {
	m.cancel()
}

// Toggle flips the calling user's favorite mark for shopID and reports the
// resulting state.
func (m *Manager) Toggle(ctx context.Context, shopID id.ShopID) (bool, error) {
	eng, err := m.engineFor(ctx)
	if err != nil {
		return false, err
	}
	return eng.Toggle(ctx, shopID)
}

// ListShops returns the calling user's favorites joined to their catalog
// records, sorted by shop name. Favorites whose shop no longer exists are
// skipped.
func (m *Manager) ListShops(ctx context.Context) ([]*catalogmodels.ShopRecord, error) {
	eng, err := m.engineFor(ctx)
	if err != nil {
		return nil, err
	}
	ids := eng.Snapshot()

	results := make([]*catalogmodels.ShopRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, shopID := range ids {
		g.Go(func() error {
			shop, err := m.shops.Get(gctx, shopID)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeNotFound) {
					return nil
				}
				return err
			}
			results[i] = shop
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shops := make([]*catalogmodels.ShopRecord, 0, len(results))
	for _, shop := range results {
		if shop != nil {
			shops = append(shops, shop)
		}
	}
	sort.Slice(shops, func(i, j int) bool { return shops[i].Name < shops[j].Name })
	return shops, nil
}

func (m *Manager) engineFor(ctx context.Context) (*Engine, error) {
	user, ok := requestcontext.UserFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "sign in to use favorites")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if eng, ok := m.engines[user.ID]; ok {
		return eng, nil
	}

	eng, err := New(user.ID, m.store, m.writeTimeout, WithLogger(m.logger))
	if err != nil {
		return nil, err
	}
	// Seed the mirror before the first toggle so flips start from the
	// persisted state rather than an empty set.
	seeded, err := m.store.List(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not load favorites")
	}
	eng.replace(seeded)

	m.engines[user.ID] = eng
	go func() {
		if err := eng.Run(m.root); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("favorites watch ended",
				"user_id", user.ID,
				"error", err.Error(),
			)
		}
	}()
	return eng, nil
}

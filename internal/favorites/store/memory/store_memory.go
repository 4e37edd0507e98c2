// Package memory provides an in-memory favorites store. Watch subscribers
// receive the full current set on every mutation, mirroring the snapshot
// semantics of the postgres poller.
package memory

import (
	"context"
	"sync"
	"time"

	"udonmap/internal/favorites/models"
	id "udonmap/pkg/domain"
)

type Store struct {
	mu        sync.RWMutex
	favorites map[id.UserID]map[id.ShopID]models.FavoriteEntry
	watchers  map[id.UserID][]chan []id.ShopID
}

func New() *Store {
	return &Store{
		favorites: make(map[id.UserID]map[id.ShopID]models.FavoriteEntry),
		watchers:  make(map[id.UserID][]chan []id.ShopID),
	}
}

func (s *Store) Add(_ context.Context, userID id.UserID, shopID id.ShopID, at time.Time) error {
	s.mu.Lock()
	set, ok := s.favorites[userID]
	if !ok {
		set = make(map[id.ShopID]models.FavoriteEntry)
		s.favorites[userID] = set
	}
	set[shopID] = models.FavoriteEntry{UserID: userID, ShopID: shopID, CreatedAt: at}
	snapshot := s.snapshotLocked(userID)
	watchers := append([]chan []id.ShopID(nil), s.watchers[userID]...)
	s.mu.Unlock()

	broadcast(watchers, snapshot)
	return nil
}

func (s *Store) Remove(_ context.Context, userID id.UserID, shopID id.ShopID) error {
	s.mu.Lock()
	delete(s.favorites[userID], shopID)
	snapshot := s.snapshotLocked(userID)
	watchers := append([]chan []id.ShopID(nil), s.watchers[userID]...)
	s.mu.Unlock()

	broadcast(watchers, snapshot)
	return nil
}

func (s *Store) List(_ context.Context, userID id.UserID) ([]id.ShopID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(userID), nil
}

// Watch streams the user's full favorite set on every change, starting with
// the current one. Delivery stops once ctx is cancelled; consumers must
// select on ctx themselves. Slow consumers drop intermediate snapshots
// rather than block mutations.
func (s *Store) Watch(ctx context.Context, userID id.UserID) (<-chan []id.ShopID, error) {
	updates := make(chan []id.ShopID, 1)

	s.mu.Lock()
	s.watchers[userID] = append(s.watchers[userID], updates)
	updates <- s.snapshotLocked(userID)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		chans := s.watchers[userID]
		for i, ch := range chans {
			if ch == updates {
				s.watchers[userID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
	}()
	return updates, nil
}

func (s *Store) snapshotLocked(userID id.UserID) []id.ShopID {
	set := s.favorites[userID]
	ids := make([]id.ShopID, 0, len(set))
	for shopID := range set {
		ids = append(ids, shopID)
	}
	return ids
}

func broadcast(watchers []chan []id.ShopID, snapshot []id.ShopID) {
	for _, ch := range watchers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so the next one replaces it.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

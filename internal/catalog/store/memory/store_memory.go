// Package memory provides the in-memory catalog store used for unit tests
// and single-process deployments.
package memory

import (
	"context"
	"sync"

	"udonmap/internal/catalog/models"
	id "udonmap/pkg/domain"
	"udonmap/pkg/platform/sentinel"
)

type Store struct {
	mu    sync.RWMutex
	shops map[id.ShopID]*models.ShopRecord
}

func New() *Store {
	return &Store{shops: make(map[id.ShopID]*models.ShopRecord)}
}

func (s *Store) Insert(_ context.Context, shop *models.ShopRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.shops[shop.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *shop
	s.shops[shop.ID] = &cp
	return nil
}

func (s *Store) Get(_ context.Context, shopID id.ShopID) (*models.ShopRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shop, ok := s.shops[shopID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *shop
	return &cp, nil
}

func (s *Store) ListPublishedByRegion(_ context.Context, pref id.Region) ([]*models.ShopRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ShopRecord
	for _, shop := range s.shops {
		if shop.Pref == pref && shop.Status == models.StatusPublished {
			cp := *shop
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Delete removes a record. Used only by the compensating side of the
// in-memory promotion applier; published records are never deleted through
// the public surface.
func (s *Store) Delete(_ context.Context, shopID id.ShopID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shops, shopID)
	return nil
}

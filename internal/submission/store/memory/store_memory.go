// Package memory provides the in-memory submission store and the compensating
// promotion applier used for unit tests and single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	catalogmodels "udonmap/internal/catalog/models"
	"udonmap/internal/submission/models"
	id "udonmap/pkg/domain"
	"udonmap/pkg/platform/sentinel"
)

type Store struct {
	mu   sync.RWMutex
	subs map[id.SubmissionID]*models.SubmissionRecord
}

func New() *Store {
	return &Store{subs: make(map[id.SubmissionID]*models.SubmissionRecord)}
}

func (s *Store) Create(_ context.Context, sub *models.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[sub.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *sub
	s.subs[sub.ID] = &cp
	return nil
}

func (s *Store) Get(_ context.Context, subID id.SubmissionID) (*models.SubmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[subID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

// Update replaces a record. It refuses updates when the stored record has
// already been decided, so a racing edit or second decision cannot undo a
// terminal status.
func (s *Store) Update(_ context.Context, sub *models.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.subs[sub.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.Status.Terminal() {
		return sentinel.ErrInvalidState
	}
	cp := *sub
	s.subs[sub.ID] = &cp
	return nil
}

func (s *Store) Delete(_ context.Context, subID id.SubmissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[subID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.subs, subID)
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID id.UserID) ([]*models.SubmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SubmissionRecord
	for _, sub := range s.subs {
		if sub.SubmittedByUID == userID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListPending(_ context.Context) ([]*models.SubmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SubmissionRecord
	for _, sub := range s.subs {
		if sub.Status == models.StatusPending {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CountPending(_ context.Context, userID id.UserID, max int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sub := range s.subs {
		if sub.SubmittedByUID == userID && sub.Status == models.StatusPending {
			count++
			if count >= max {
				break
			}
		}
	}
	return count, nil
}

// CatalogWriter is the slice of the catalog store the applier needs.
type CatalogWriter interface {
	Insert(ctx context.Context, shop *catalogmodels.ShopRecord) error
	Delete(ctx context.Context, shopID id.ShopID) error
}

// DecisionApplier promotes a submission against in-memory stores. The shop
// insert is compensated if the submission update fails, so callers never
// observe a published shop whose submission is still pending.
type DecisionApplier struct {
	subs  *Store
	shops CatalogWriter
}

func NewDecisionApplier(subs *Store, shops CatalogWriter) *DecisionApplier {
	return &DecisionApplier{subs: subs, shops: shops}
}

func (a *DecisionApplier) ApplyApproval(ctx context.Context, sub *models.SubmissionRecord, shop *catalogmodels.ShopRecord) error {
	if err := a.shops.Insert(ctx, shop); err != nil {
		return err
	}
	if err := a.subs.Update(ctx, sub); err != nil {
		_ = a.shops.Delete(ctx, shop.ID)
		return err
	}
	return nil
}

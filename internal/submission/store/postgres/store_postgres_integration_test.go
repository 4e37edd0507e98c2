//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	catalogmodels "udonmap/internal/catalog/models"
	"udonmap/internal/catalog/normkey"
	catalogpg "udonmap/internal/catalog/store/postgres"
	"udonmap/internal/submission/models"
	"udonmap/internal/submission/store/postgres"
	id "udonmap/pkg/domain"
	"udonmap/pkg/platform/sentinel"
	"udonmap/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
	shops    *catalogpg.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.shops = catalogpg.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "favorites", "submissions", "shops")
	s.Require().NoError(err)
}

func newTestSubmission(uid string, at time.Time) *models.SubmissionRecord {
	return &models.SubmissionRecord{
		ID:             id.NewSubmissionID(),
		Pref:           id.RegionFukuoka,
		Name:           "Udon Taro",
		Address:        "1-2-3 Chuo, Fukuoka",
		NameKey:        normkey.Key("Udon Taro"),
		AddrKey:        normkey.Key("1-2-3 Chuo, Fukuoka"),
		Status:         models.StatusPending,
		SubmittedByUID: id.UserID(uid),
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	sub := newTestSubmission("alice", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Create(ctx, sub))

	got, err := s.store.Get(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(sub.ID, got.ID)
	s.Equal(models.StatusPending, got.Status)
	s.Equal(sub.NameKey, got.NameKey)
	s.Nil(got.DecidedAt)
}

func (s *PostgresStoreSuite) TestListByUserOrdering() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := newTestSubmission("alice", base.Add(-time.Hour))
	newer := newTestSubmission("alice", base)
	other := newTestSubmission("bob", base)
	for _, sub := range []*models.SubmissionRecord{older, newer, other} {
		s.Require().NoError(s.store.Create(ctx, sub))
	}

	subs, err := s.store.ListByUser(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(subs, 2)
	s.Equal(newer.ID, subs[0].ID)
	s.Equal(older.ID, subs[1].ID)
}

func (s *PostgresStoreSuite) TestCountPendingIsCapped() {
	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Create(ctx, newTestSubmission("alice", base.Add(time.Duration(i)*time.Second))))
	}

	count, err := s.store.CountPending(ctx, "alice", 3)
	s.Require().NoError(err)
	s.Equal(3, count)

	count, err = s.store.CountPending(ctx, "alice", 10)
	s.Require().NoError(err)
	s.Equal(5, count)
}

func (s *PostgresStoreSuite) TestUpdateRefusesDecidedRecords() {
	ctx := context.Background()
	sub := newTestSubmission("alice", time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, sub))

	decidedAt := time.Now().UTC().Truncate(time.Microsecond)
	sub.Status = models.StatusRejected
	sub.DecidedAt = &decidedAt
	sub.DecidedBy = "mod"
	sub.DecisionReason = "not accepted"
	s.Require().NoError(s.store.Update(ctx, sub))

	sub.DecisionReason = "second thoughts"
	err := s.store.Update(ctx, sub)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrInvalidState))
}

// TestConcurrentDecision verifies that two moderators racing on one pending
// submission produce exactly one applied decision.
func (s *PostgresStoreSuite) TestConcurrentDecision() {
	ctx := context.Background()
	sub := newTestSubmission("alice", time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, sub))

	const moderators = 20
	var wg sync.WaitGroup
	var successCount, invalidCount atomic.Int32

	for i := 0; i < moderators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			decidedAt := time.Now().UTC()
			update := *sub
			update.Status = models.StatusRejected
			update.DecidedAt = &decidedAt
			update.DecidedBy = "mod"
			update.DecisionReason = "not accepted"
			err := s.store.Update(ctx, &update)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrInvalidState) {
				invalidCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one decision should apply")
	s.Equal(int32(moderators-1), invalidCount.Load())
}

func (s *PostgresStoreSuite) TestApplyApprovalIsAtomic() {
	ctx := context.Background()
	sub := newTestSubmission("alice", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Create(ctx, sub))

	decidedAt := time.Now().UTC().Truncate(time.Microsecond)
	shop := &catalogmodels.ShopRecord{
		ID:                 id.NewShopID(),
		Pref:               sub.Pref,
		Name:               sub.Name,
		Address:            sub.Address,
		Status:             catalogmodels.StatusPublished,
		NameKey:            sub.NameKey,
		AddrKey:            sub.AddrKey,
		CreatedAt:          decidedAt,
		UpdatedAt:          decidedAt,
		SourceSubmissionID: sub.ID,
		ApprovedBy:         "mod",
	}
	sub.Status = models.StatusApproved
	sub.DecidedAt = &decidedAt
	sub.DecidedBy = "mod"
	sub.ResultingShopID = shop.ID

	s.Require().NoError(s.store.ApplyApproval(ctx, sub, shop))

	published, err := s.shops.Get(ctx, shop.ID)
	s.Require().NoError(err)
	s.Equal(sub.ID, published.SourceSubmissionID)

	// A second approval attempt must fail without inserting another shop.
	dup := *shop
	dup.ID = id.NewShopID()
	err = s.store.ApplyApproval(ctx, sub, &dup)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrInvalidState))

	_, err = s.shops.Get(ctx, dup.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

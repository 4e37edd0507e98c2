package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udonmap/internal/audit"
	catalogmodels "udonmap/internal/catalog/models"
	catalogservice "udonmap/internal/catalog/service"
	catalogmem "udonmap/internal/catalog/store/memory"
	"udonmap/internal/ratelimit/cooldown"
	cooldownmem "udonmap/internal/ratelimit/store/memory"
	"udonmap/internal/submission/models"
	"udonmap/internal/submission/quota"
	submem "udonmap/internal/submission/store/memory"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/platform/sentinel"
)

func TestListPending(t *testing.T) {
	f := newFixture(t)
	first, err := f.svc.Submit(submitterCtx("alice", baseTime), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Name = "Udon Jiro"
	req.Address = "4-5-6 Hakata, Fukuoka"
	second, err := f.svc.Submit(submitterCtx("bob", baseTime.Add(2*time.Minute)), req)
	require.NoError(t, err)

	t.Run("requires the moderator role", func(t *testing.T) {
		_, err := f.svc.ListPending(submitterCtx("alice", baseTime))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = f.svc.ListPending(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("returns the queue oldest first", func(t *testing.T) {
		queue, err := f.svc.ListPending(moderatorCtx("mod", baseTime))
		require.NoError(t, err)
		require.Len(t, queue, 2)
		assert.Equal(t, first.ID, queue[0].ID)
		assert.Equal(t, second.ID, queue[1].ID)
	})

	t.Run("decided submissions leave the queue", func(t *testing.T) {
		_, err := f.svc.Approve(moderatorCtx("mod", baseTime.Add(time.Hour)), first.ID)
		require.NoError(t, err)

		queue, err := f.svc.ListPending(moderatorCtx("mod", baseTime))
		require.NoError(t, err)
		require.Len(t, queue, 1)
		assert.Equal(t, second.ID, queue[0].ID)
	})
}

func TestApprove(t *testing.T) {
	t.Run("publishes the shop and closes the submission together", func(t *testing.T) {
		f := newFixture(t)
		sub, err := f.svc.Submit(submitterCtx("alice", baseTime), validRequest())
		require.NoError(t, err)

		decidedAt := baseTime.Add(time.Hour)
		decided, err := f.svc.Approve(moderatorCtx("mod", decidedAt), sub.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, decided.Status)
		assert.Equal(t, id.UserID("mod"), decided.DecidedBy)
		require.NotNil(t, decided.DecidedAt)
		assert.Equal(t, decidedAt, *decided.DecidedAt)

		shop, err := f.shops.Get(context.Background(), decided.ResultingShopID)
		require.NoError(t, err)
		assert.Equal(t, catalogmodels.StatusPublished, shop.Status)
		assert.Equal(t, sub.Name, shop.Name)
		assert.Equal(t, sub.NameKey, shop.NameKey)
		assert.Equal(t, sub.ID, shop.SourceSubmissionID)
		assert.Equal(t, id.UserID("mod"), shop.ApprovedBy)

		events := f.events.Events()
		require.Len(t, events, 2)
		assert.Equal(t, audit.ActionSubmissionApproved, events[1].Action)
	})

	t.Run("requires the moderator role", func(t *testing.T) {
		f := newFixture(t)
		sub, err := f.svc.Submit(submitterCtx("alice", baseTime), validRequest())
		require.NoError(t, err)

		_, err = f.svc.Approve(submitterCtx("alice", baseTime), sub.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("approving twice reports invalid state", func(t *testing.T) {
		f := newFixture(t)
		sub, err := f.svc.Submit(submitterCtx("alice", baseTime), validRequest())
		require.NoError(t, err)
		_, err = f.svc.Approve(moderatorCtx("mod", baseTime), sub.ID)
		require.NoError(t, err)

		_, err = f.svc.Approve(moderatorCtx("mod", baseTime), sub.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("unknown submission reports not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Approve(moderatorCtx("mod", baseTime), id.NewSubmissionID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("failed publication leaves the submission pending", func(t *testing.T) {
		subs := submem.New()
		shops := catalogmem.New()
		catalog, err := catalogservice.New(shops)
		require.NoError(t, err)
		limiter, err := cooldown.New(cooldownmem.New(), 60*time.Second)
		require.NoError(t, err)
		guard, err := quota.New(subs, 10)
		require.NoError(t, err)
		svc, err := New(subs, submem.NewDecisionApplier(subs, failingCatalog{}), catalog, limiter, guard)
		require.NoError(t, err)

		sub, err := svc.Submit(submitterCtx("alice", baseTime), validRequest())
		require.NoError(t, err)

		_, err = svc.Approve(moderatorCtx("mod", baseTime), sub.ID)
		require.Error(t, err)

		stored, err := subs.Get(context.Background(), sub.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, stored.Status)
	})
}

type failingCatalog struct{}

func (failingCatalog) Insert(context.Context, *catalogmodels.ShopRecord) error {
	return sentinel.ErrUnavailable
}

func (failingCatalog) Delete(context.Context, id.ShopID) error { return nil }

func TestReject(t *testing.T) {
	t.Run("closes the submission with the given reason", func(t *testing.T) {
		f := newFixture(t)
		sub, err := f.svc.Submit(submitterCtx("alice", baseTime), validRequest())
		require.NoError(t, err)

		decided, err := f.svc.Reject(moderatorCtx("mod", baseTime.Add(time.Hour)), sub.ID, "out of coverage area")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, decided.Status)
		assert.Equal(t, "out of coverage area", decided.DecisionReason)
		assert.Equal(t, id.UserID("mod"), decided.DecidedBy)

		events := f.events.Events()
		require.Len(t, events, 2)
		assert.Equal(t, audit.ActionSubmissionRejected, events[1].Action)
		assert.Equal(t, "out of coverage area", events[1].Reason)
	})

	t.Run("empty reason falls back to the default", func(t *testing.T) {
		f := newFixture(t)
		sub, err := f.svc.Submit(submitterCtx("alice", baseTime), validRequest())
		require.NoError(t, err)

		decided, err := f.svc.Reject(moderatorCtx("mod", baseTime), sub.ID, "")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultRejectReason, decided.DecisionReason)
	})

	t.Run("rejected shop can be resubmitted", func(t *testing.T) {
		f := newFixture(t)
		sub, err := f.svc.Submit(submitterCtx("alice", baseTime), validRequest())
		require.NoError(t, err)
		_, err = f.svc.Reject(moderatorCtx("mod", baseTime), sub.ID, "")
		require.NoError(t, err)

		_, err = f.svc.Submit(submitterCtx("alice", baseTime.Add(2*time.Minute)), validRequest())
		assert.NoError(t, err)
	})

	t.Run("rejecting an approved submission reports invalid state", func(t *testing.T) {
		f := newFixture(t)
		sub := approveSubmission(t, f, "alice", validRequest())

		_, err := f.svc.Reject(moderatorCtx("mod", baseTime), sub.ID, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

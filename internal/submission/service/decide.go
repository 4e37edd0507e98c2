package service

import (
	"context"

	"udonmap/internal/audit"
	catalogmodels "udonmap/internal/catalog/models"
	"udonmap/internal/submission/models"
	"udonmap/internal/submission/ports"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/requestcontext"
)

// ListPending returns the moderation queue, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]*models.SubmissionRecord, error) {
	if _, err := s.moderatorFrom(ctx); err != nil {
		return nil, err
	}
	subs, err := s.subs.ListPending(ctx)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to list pending submissions")
	}
	return subs, nil
}

// Approve promotes a pending submission to a published shop. The shop insert
// and the status transition apply as one unit; neither outlives a failure of
// the other.
func (s *Service) Approve(ctx context.Context, subID id.SubmissionID) (*models.SubmissionRecord, error) {
	moderator, err := s.moderatorFrom(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.pendingForDecision(ctx, subID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	shop := &catalogmodels.ShopRecord{
		ID:                 id.NewShopID(),
		Pref:               sub.Pref,
		Name:               sub.Name,
		Address:            sub.Address,
		Note:               sub.Note,
		Status:             catalogmodels.StatusPublished,
		NameKey:            sub.NameKey,
		AddrKey:            sub.AddrKey,
		CreatedAt:          now,
		UpdatedAt:          now,
		SourceSubmissionID: sub.ID,
		ApprovedBy:         moderator.ID,
	}

	sub.Status = models.StatusApproved
	sub.DecidedAt = &now
	sub.DecidedBy = moderator.ID
	sub.ResultingShopID = shop.ID
	sub.UpdatedAt = now

	if err := s.promoter.ApplyApproval(ctx, sub, shop); err != nil {
		return nil, s.translateStoreErr(err, "failed to apply approval")
	}

	if s.metrics != nil {
		s.metrics.Decisions.WithLabelValues("approved").Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Timestamp: now,
		Action:    audit.ActionSubmissionApproved,
		ActorID:   moderator.ID,
		Subject:   sub.ID.String(),
	})
	return sub, nil
}

// Reject closes a pending submission without publishing. An empty reason is
// replaced with the default so the submitter always sees why.
func (s *Service) Reject(ctx context.Context, subID id.SubmissionID, reason string) (*models.SubmissionRecord, error) {
	moderator, err := s.moderatorFrom(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.pendingForDecision(ctx, subID)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = models.DefaultRejectReason
	}
	now := requestcontext.Now(ctx)
	sub.Status = models.StatusRejected
	sub.DecidedAt = &now
	sub.DecidedBy = moderator.ID
	sub.DecisionReason = reason
	sub.UpdatedAt = now

	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, s.translateStoreErr(err, "failed to apply rejection")
	}

	if s.metrics != nil {
		s.metrics.Decisions.WithLabelValues("rejected").Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Timestamp: now,
		Action:    audit.ActionSubmissionRejected,
		ActorID:   moderator.ID,
		Subject:   sub.ID.String(),
		Reason:    reason,
	})
	return sub, nil
}

func (s *Service) moderatorFrom(ctx context.Context) (requestcontext.User, error) {
	user, ok := requestcontext.UserFrom(ctx)
	if !ok {
		return requestcontext.User{}, dErrors.New(dErrors.CodeUnauthorized, "sign in required")
	}
	if !user.Moderator {
		return requestcontext.User{}, dErrors.New(dErrors.CodeForbidden, "moderator role required")
	}
	return user, nil
}

func (s *Service) pendingForDecision(ctx context.Context, subID id.SubmissionID) (*models.SubmissionRecord, error) {
	sub, err := s.subs.Get(ctx, subID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to load submission")
	}
	if sub.Status != models.StatusPending {
		return nil, dErrors.Newf(dErrors.CodeInvalidState,
			"submission has already been %s", sub.Status)
	}
	return sub, nil
}

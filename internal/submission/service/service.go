// Package service orchestrates the submission lifecycle: validate,
// rate-limit, quota, duplicate-check, persist as pending, and the
// owner-facing edit/withdraw operations. Moderator decisions live in
// decide.go.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"udonmap/internal/audit"
	"udonmap/internal/catalog/normkey"
	"udonmap/internal/submission/metrics"
	"udonmap/internal/submission/models"
	"udonmap/internal/submission/ports"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/platform/sentinel"
	"udonmap/pkg/requestcontext"
)

type Service struct {
	subs     ports.Store
	promoter ports.DecisionApplier
	dupes    ports.DuplicateFinder
	limiter  ports.CooldownLimiter
	quota    ports.QuotaGuard
	auditor  ports.AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(
	subs ports.Store,
	promoter ports.DecisionApplier,
	dupes ports.DuplicateFinder,
	limiter ports.CooldownLimiter,
	quota ports.QuotaGuard,
	opts ...Option,
) (*Service, error) {
	if subs == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	if promoter == nil {
		return nil, fmt.Errorf("decision applier is required")
	}
	if dupes == nil {
		return nil, fmt.Errorf("duplicate finder is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("cooldown limiter is required")
	}
	if quota == nil {
		return nil, fmt.Errorf("quota guard is required")
	}
	svc := &Service{
		subs:     subs,
		promoter: promoter,
		dupes:    dupes,
		limiter:  limiter,
		quota:    quota,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Submit runs the intake pipeline. Preconditions short-circuit in order:
// cooldown, authentication, quota, duplicate. The cooldown timestamp only
// advances after the record actually persisted.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmissionRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	key := s.limiterKey(ctx)

	if err := s.limiter.Check(ctx, key, now); err != nil {
		s.countBlocked("rate_limited")
		return nil, err
	}

	user, ok := requestcontext.UserFrom(ctx)
	if !ok {
		s.countBlocked("auth_required")
		return nil, dErrors.New(dErrors.CodeUnauthorized,
			"sign in to submit so you can track and edit your request")
	}

	hasCapacity, err := s.quota.HasCapacity(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !hasCapacity {
		s.countBlocked("quota_exceeded")
		return nil, dErrors.New(dErrors.CodeQuotaExceeded,
			"you have reached the limit of submissions awaiting review; wait for a decision")
	}

	dup, err := s.dupes.FindDuplicate(ctx, req.Pref, req.Name, req.Address)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		s.countBlocked("duplicate")
		return nil, dErrors.Newf(dErrors.CodeDuplicate,
			"this shop may already be listed: %s (%s)", dup.Name, dup.Address).
			WithDetail("existing", dup)
	}

	sub := &models.SubmissionRecord{
		ID:               id.NewSubmissionID(),
		Pref:             req.Pref,
		Name:             normkey.Trim(req.Name),
		Address:          normkey.Trim(req.Address),
		Note:             normkey.Trim(req.Note),
		NameKey:          normkey.Key(req.Name),
		AddrKey:          normkey.Key(req.Address),
		Status:           models.StatusPending,
		SubmittedByUID:   user.ID,
		SubmittedByEmail: user.Email,
		UserAgent:        requestcontext.UserAgent(ctx),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, s.translateStoreErr(err, "failed to persist submission")
	}

	if err := s.limiter.Record(ctx, key, now); err != nil {
		// Advisory control: a failed record must not fail the submission.
		s.logger.WarnContext(ctx, "failed to record cooldown timestamp", "error", err.Error())
	}

	if s.metrics != nil {
		s.metrics.Received.Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Timestamp: now,
		Action:    audit.ActionSubmissionReceived,
		ActorID:   user.ID,
		Subject:   sub.ID.String(),
	})
	return sub, nil
}

// Edit patches a pending submission. Owner only; normalized keys are
// recomputed from the patched or existing values.
func (s *Service) Edit(ctx context.Context, subID id.SubmissionID, patch models.EditRequest) (*models.SubmissionRecord, error) {
	user, ok := requestcontext.UserFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "sign in required")
	}

	sub, err := s.ownedPending(ctx, subID, user.ID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		sub.Name = normkey.Trim(*patch.Name)
	}
	if patch.Address != nil {
		sub.Address = normkey.Trim(*patch.Address)
	}
	if patch.Note != nil {
		sub.Note = normkey.Trim(*patch.Note)
	}
	if err := (models.SubmitRequest{
		Pref: sub.Pref, Name: sub.Name, Address: sub.Address, Note: sub.Note,
	}).Validate(); err != nil {
		return nil, err
	}
	sub.NameKey = normkey.Key(sub.Name)
	sub.AddrKey = normkey.Key(sub.Address)
	sub.UpdatedAt = requestcontext.Now(ctx)

	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, s.translateStoreErr(err, "failed to update submission")
	}
	if s.metrics != nil {
		s.metrics.PendingEdits.Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Timestamp: sub.UpdatedAt,
		Action:    audit.ActionSubmissionEdited,
		ActorID:   user.ID,
		Subject:   sub.ID.String(),
	})
	return sub, nil
}

// Withdraw deletes a pending submission. Owner only.
func (s *Service) Withdraw(ctx context.Context, subID id.SubmissionID) error {
	user, ok := requestcontext.UserFrom(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "sign in required")
	}

	if _, err := s.ownedPending(ctx, subID, user.ID); err != nil {
		return err
	}
	if err := s.subs.Delete(ctx, subID); err != nil {
		return s.translateStoreErr(err, "failed to delete submission")
	}
	if s.metrics != nil {
		s.metrics.Withdrawals.Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionSubmissionWithdrawn,
		ActorID:   user.ID,
		Subject:   subID.String(),
	})
	return nil
}

// ListMine returns the caller's submissions, newest first.
func (s *Service) ListMine(ctx context.Context) ([]*models.SubmissionRecord, error) {
	user, ok := requestcontext.UserFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "sign in required")
	}
	subs, err := s.subs.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to list submissions")
	}
	return subs, nil
}

// ownedPending loads a submission and enforces the shared edit/withdraw
// preconditions: exists, owned by the caller, still pending.
func (s *Service) ownedPending(ctx context.Context, subID id.SubmissionID, userID id.UserID) (*models.SubmissionRecord, error) {
	sub, err := s.subs.Get(ctx, subID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to load submission")
	}
	if sub.SubmittedByUID != userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the submitter may modify this request")
	}
	if sub.Status != models.StatusPending {
		return nil, dErrors.Newf(dErrors.CodeInvalidState,
			"submission has already been %s", sub.Status)
	}
	return sub, nil
}

func (s *Service) limiterKey(ctx context.Context) string {
	// Keyed per device, matching the original client-local behavior; the
	// authenticated user is the fallback when the client sends no device ID.
	if device := requestcontext.DeviceID(ctx); device != "" {
		return device
	}
	return string(requestcontext.UserID(ctx))
}

func (s *Service) countBlocked(reason string) {
	if s.metrics != nil {
		s.metrics.Blocked.WithLabelValues(reason).Inc()
	}
}

func (s *Service) translateStoreErr(err error, message string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "submission not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "submission has already been decided")
	case errors.Is(err, sentinel.ErrIndexRequired):
		return dErrors.Wrap(err, dErrors.CodeUnavailable,
			"the submission store is missing a required index or table; provision the schema and retry")
	case errors.Is(err, sentinel.ErrPermission):
		return dErrors.Wrap(err, dErrors.CodePermission,
			"the submission store refused access; check the service credentials")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "the submission store is unreachable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, message)
	}
}

// Package ports defines the submission module's collaborator interfaces.
// Interfaces live here when consumed across the lifecycle service, the quota
// guard, and the stores.
package ports

import (
	"context"
	"log/slog"
	"time"

	"udonmap/internal/audit"
	catalogmodels "udonmap/internal/catalog/models"
	"udonmap/internal/submission/models"
	id "udonmap/pkg/domain"
	"udonmap/pkg/requestcontext"
)

// Store manages candidate records. Update only applies while the current
// stored status is pending; stores reject updates to decided records so the
// monotonic transition invariant holds even under races.
type Store interface {
	Create(ctx context.Context, sub *models.SubmissionRecord) error
	Get(ctx context.Context, subID id.SubmissionID) (*models.SubmissionRecord, error)
	Update(ctx context.Context, sub *models.SubmissionRecord) error
	Delete(ctx context.Context, subID id.SubmissionID) error

	// ListByUser returns a user's submissions, newest first.
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.SubmissionRecord, error)

	// ListPending returns the review queue, oldest first.
	ListPending(ctx context.Context) ([]*models.SubmissionRecord, error)

	// CountPending counts a user's pending submissions, scanning at most
	// max records so quota checks stay bounded.
	CountPending(ctx context.Context, userID id.UserID, max int) (int, error)
}

// DecisionApplier applies an approval as one atomic unit: the published shop
// record and the submission's transition to approved either both become
// visible or neither does.
type DecisionApplier interface {
	ApplyApproval(ctx context.Context, sub *models.SubmissionRecord, shop *catalogmodels.ShopRecord) error
}

// DuplicateFinder compares a candidate against the published catalog.
type DuplicateFinder interface {
	FindDuplicate(ctx context.Context, pref id.Region, name, address string) (*catalogmodels.ShopRecord, error)
}

// CooldownLimiter throttles repeat submissions per client key. Check never
// records; the lifecycle manager calls Record only after a successful persist.
type CooldownLimiter interface {
	Check(ctx context.Context, key string, now time.Time) error
	Record(ctx context.Context, key string, now time.Time) error
}

// QuotaGuard bounds simultaneously pending submissions per user.
type QuotaGuard interface {
	HasCapacity(ctx context.Context, userID id.UserID) (bool, error)
}

// AuditPublisher emits audit events for moderation-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs an audit event and forwards it to the publisher if one is
// configured. Publisher failures are logged, never surfaced: losing an audit
// event must not fail the user's operation.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event) {
	event.RequestID = requestcontext.RequestID(ctx)
	if logger != nil {
		logger.InfoContext(ctx, event.Action,
			"log_type", "audit",
			"actor_id", event.ActorID,
			"subject", event.Subject,
			"request_id", event.RequestID,
		)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action, "error", err.Error())
	}
}

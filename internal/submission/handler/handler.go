package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"udonmap/internal/submission/models"
	id "udonmap/pkg/domain"
	"udonmap/pkg/platform/httputil"
	"udonmap/pkg/requestcontext"
)

// Service defines the submission lifecycle operations the handler exposes.
type Service interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmissionRecord, error)
	Edit(ctx context.Context, subID id.SubmissionID, patch models.EditRequest) (*models.SubmissionRecord, error)
	Withdraw(ctx context.Context, subID id.SubmissionID) error
	ListMine(ctx context.Context) ([]*models.SubmissionRecord, error)
	ListPending(ctx context.Context) ([]*models.SubmissionRecord, error)
	Approve(ctx context.Context, subID id.SubmissionID) (*models.SubmissionRecord, error)
	Reject(ctx context.Context, subID id.SubmissionID, reason string) (*models.SubmissionRecord, error)
}

// Handler wires submission endpoints to the lifecycle service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a submission handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts submission endpoints on the router. Authentication and the
// moderator gate are applied by the router's middleware groups.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submissions", h.HandleSubmit)
	r.Get("/submissions/mine", h.HandleListMine)
	r.Patch("/submissions/{submissionID}", h.HandleEdit)
	r.Delete("/submissions/{submissionID}", h.HandleWithdraw)
}

// RegisterModeration mounts the moderator-only endpoints.
func (h *Handler) RegisterModeration(r chi.Router) {
	r.Get("/submissions/pending", h.HandleListPending)
	r.Post("/submissions/{submissionID}/approve", h.HandleApprove)
	r.Post("/submissions/{submissionID}/reject", h.HandleReject)
}

// HandleSubmit handles POST /submissions requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.Submit(ctx, req.toDomain())
	if err != nil {
		h.logger.WarnContext(ctx, "submission refused",
			"request_id", requestID,
			"pref", req.Pref,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission received",
		"request_id", requestID,
		"submission_id", sub.ID,
		"pref", sub.Pref,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, sub)
}

// HandleListMine handles GET /submissions/mine requests.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := h.service.ListMine(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

// HandleEdit handles PATCH /submissions/{submissionID} requests.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[EditRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.Edit(ctx, subID, req.toDomain())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission edited",
		"request_id", requestID,
		"submission_id", sub.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, sub)
}

// HandleWithdraw handles DELETE /submissions/{submissionID} requests.
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Withdraw(ctx, subID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission withdrawn",
		"request_id", requestID,
		"submission_id", subID,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleListPending handles GET /submissions/pending requests.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := h.service.ListPending(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

// HandleApprove handles POST /submissions/{submissionID}/approve requests.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sub, err := h.service.Approve(ctx, subID)
	if err != nil {
		h.logger.WarnContext(ctx, "approval failed",
			"request_id", requestID,
			"submission_id", subID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission approved",
		"request_id", requestID,
		"submission_id", sub.ID,
		"shop_id", sub.ResultingShopID,
	)
	httputil.WriteJSON(w, http.StatusOK, sub)
}

// HandleReject handles POST /submissions/{submissionID}/reject requests.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var reason string
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		reason = req.Reason
	}

	sub, err := h.service.Reject(ctx, subID, reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission rejected",
		"request_id", requestID,
		"submission_id", sub.ID,
		"reason", sub.DecisionReason,
	)
	httputil.WriteJSON(w, http.StatusOK, sub)
}

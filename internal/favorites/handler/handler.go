package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogmodels "udonmap/internal/catalog/models"
	id "udonmap/pkg/domain"
	"udonmap/pkg/platform/httputil"
	"udonmap/pkg/requestcontext"
)

// Service defines the favorites operations the handler exposes.
type Service interface {
	Toggle(ctx context.Context, shopID id.ShopID) (bool, error)
	ListShops(ctx context.Context) ([]*catalogmodels.ShopRecord, error)
}

// Handler wires favorites endpoints to the per-user sync engines.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts favorites endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/favorites", h.HandleList)
	r.Post("/favorites/{shopID}/toggle", h.HandleToggle)
}

// HandleList handles GET /favorites requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shops, err := h.service.ListShops(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"shops": shops})
}

// HandleToggle handles POST /favorites/{shopID}/toggle requests.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	shopID, err := id.ParseShopID(chi.URLParam(r, "shopID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	favorite, err := h.service.Toggle(ctx, shopID)
	if err != nil {
		h.logger.WarnContext(ctx, "favorite toggle failed",
			"request_id", requestID,
			"shop_id", shopID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"shopId":   shopID,
		"favorite": favorite,
	})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"udonmap/internal/catalog/models"
	id "udonmap/pkg/domain"
	"udonmap/pkg/platform/httputil"
)

// Service defines the read-side catalog operations the handler exposes.
type Service interface {
	ListByRegion(ctx context.Context, pref id.Region, keyword string) ([]*models.ShopRecord, error)
	Get(ctx context.Context, shopID id.ShopID) (*models.ShopRecord, error)
}

// Handler serves the public shop directory.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts catalog endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/shops", h.HandleList)
	r.Get("/shops/{shopID}", h.HandleGet)
}

// HandleList handles GET /shops?pref=&q= requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pref := id.Region(r.URL.Query().Get("pref"))
	keyword := r.URL.Query().Get("q")

	shops, err := h.service.ListByRegion(ctx, pref, keyword)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"pref":  pref,
		"shops": shops,
	})
}

// HandleGet handles GET /shops/{shopID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shopID, err := id.ParseShopID(chi.URLParam(r, "shopID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	shop, err := h.service.Get(ctx, shopID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shop)
}

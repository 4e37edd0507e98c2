// Package httptransport assembles the HTTP surface: the shared middleware
// chain, the public catalog routes, the authenticated submission and
// favorites routes, and the moderator queue.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cataloghandler "udonmap/internal/catalog/handler"
	favoriteshandler "udonmap/internal/favorites/handler"
	"udonmap/internal/platform/metrics"
	"udonmap/internal/platform/middleware"
	submissionhandler "udonmap/internal/submission/handler"
	"udonmap/pkg/platform/httputil"
)

// RouterConfig carries everything the router needs; main owns construction.
type RouterConfig struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator

	ThrottleRPS   float64
	ThrottleBurst int

	Catalog     *cataloghandler.Handler
	Submissions *submissionhandler.Handler
	Favorites   *favoriteshandler.Handler
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.Metadata)
	r.Use(middleware.Throttle(cfg.ThrottleRPS, cfg.ThrottleBurst, cfg.Metrics))
	r.Use(middleware.Authenticate(cfg.Validator, cfg.Logger))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public directory reads.
	cfg.Catalog.Register(r)

	// Authenticated submitter surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		cfg.Submissions.Register(r)
		cfg.Favorites.Register(r)
	})

	// Moderator surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireModerator)
		cfg.Submissions.RegisterModeration(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

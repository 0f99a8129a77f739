// Package server assembles the botwall HTTP surface.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/botwall-io/botwall/internal/handlers"
	"github.com/botwall-io/botwall/internal/httputil"
	"github.com/botwall-io/botwall/internal/middleware"
)

// ReadinessChecker reports whether a backing dependency can serve.
type ReadinessChecker func(ctx context.Context) error

// NewRouter constructs the ServeMux with all botwall API routes
// registered. Owner endpoints run behind the JWT middleware; the
// plugin endpoints authenticate by API key inside their handlers.
func NewRouter(
	sites *handlers.SitesHandler,
	ingest *handlers.IngestHandler,
	analytics *handlers.AnalyticsHandler,
	auth *middleware.OwnerAuth,
	ready ReadinessChecker,
) http.Handler {
	mux := http.NewServeMux()

	// Owner-facing site management
	mux.HandleFunc("POST /api/v1/sites", auth.RequireOwner(sites.Register))
	mux.HandleFunc("GET /api/v1/sites", auth.RequireOwner(sites.List))
	mux.HandleFunc("PATCH /api/v1/sites/{id}/status", auth.RequireOwner(sites.UpdateStatus))
	mux.HandleFunc("PATCH /api/v1/sites/{id}/monetization", auth.RequireOwner(sites.UpdateMonetization))

	// Owner-facing analytics
	mux.HandleFunc("GET /api/v1/sites/{id}/summary", auth.RequireOwner(analytics.Summary))
	mux.HandleFunc("GET /api/v1/sites/{id}/daily", auth.RequireOwner(analytics.Daily))

	// Plugin-facing hot path
	mux.HandleFunc("POST /api/v1/keys/validate", ingest.ValidateKey)
	mux.HandleFunc("POST /api/v1/collect", ingest.Collect)

	// Operational endpoints
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				httputil.WriteError(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return middleware.RequestID(mux)
}

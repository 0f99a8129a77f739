package handlers

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/botwall-io/botwall/internal/httputil"
	"github.com/botwall-io/botwall/internal/metrics"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/ratelimit"
	"github.com/botwall-io/botwall/internal/service"
)

// IngestHandler serves the plugin-facing hot path: key validation and
// event collection. Both authenticate by API key, not owner JWT.
type IngestHandler struct {
	validator   *service.ValidatorService
	ingest      *service.IngestService
	limiter     ratelimit.RateLimiter
	maxBodySize int64
}

func NewIngestHandler(validator *service.ValidatorService, ingest *service.IngestService, limiter ratelimit.RateLimiter, maxBodySize int64) *IngestHandler {
	return &IngestHandler{
		validator:   validator,
		ingest:      ingest,
		limiter:     limiter,
		maxBodySize: maxBodySize,
	}
}

// ValidateKey handles POST /api/v1/keys/validate. Rejections are 200
// responses with valid=false; only infrastructure failures error.
func (h *IngestHandler) ValidateKey(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.validator.Validate(r.Context(), req.APIKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := models.ValidateKeyResponse{Valid: result.Valid, Reason: result.Reason}
	if result.Valid {
		resp.SiteID = result.Site.ID
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Collect handles POST /api/v1/collect. The API key travels in the
// Authorization header so request bodies stay key-free in plugin logs.
func (h *IngestHandler) Collect(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(metrics.IngestDuration)
	defer timer.ObserveDuration()

	apiKey := bearerToken(r)
	if apiKey == "" {
		metrics.IngestRejected.WithLabelValues("unauthorized").Inc()
		httputil.WriteError(w, http.StatusUnauthorized, "missing API key")
		return
	}

	allowed, err := h.limiter.Allow(r.Context(), apiKey)
	if err == nil && !allowed {
		httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var req models.IngestRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.IngestRejected.WithLabelValues("invalid").Inc()
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.ingest.Ingest(r.Context(), apiKey, &req, httputil.GetClientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, models.IngestResponse{
		Accepted:       true,
		EventID:        event.ID,
		Classification: string(event.Classification),
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

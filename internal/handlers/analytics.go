package handlers

import (
	"net/http"
	"time"

	"github.com/botwall-io/botwall/internal/httputil"
	"github.com/botwall-io/botwall/internal/middleware"
	"github.com/botwall-io/botwall/internal/service"
)

// defaultSummaryWindow is used when the caller gives no period.
const defaultSummaryWindow = 30 * 24 * time.Hour

// AnalyticsHandler serves the owner-facing reporting endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary handles GET /api/v1/sites/{id}/summary. Optional `from` and
// `to` query parameters are RFC 3339; the default window is the last
// 30 days.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parsePeriod(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.analytics.Summarize(r.Context(),
		middleware.GetOwnerID(r.Context()), r.PathValue("id"), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summary)
}

// Daily handles GET /api/v1/sites/{id}/daily: the materialized per-day
// rollups for dashboard history.
func (h *AnalyticsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	from, to, err := parsePeriod(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rollups, err := h.analytics.DailyHistory(r.Context(),
		middleware.GetOwnerID(r.Context()), r.PathValue("id"), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"days":  rollups,
		"count": len(rollups),
	})
}

func parsePeriod(r *http.Request) (from, to time.Time, err error) {
	now := time.Now().UTC()
	from, to = now.Add(-defaultSummaryWindow), now

	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidPeriod("from")
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidPeriod("to")
		}
	}
	return from.UTC(), to.UTC(), nil
}

type errInvalidPeriod string

func (e errInvalidPeriod) Error() string {
	return "invalid " + string(e) + " parameter, want RFC 3339 timestamp"
}

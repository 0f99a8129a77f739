package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/botwall-io/botwall/internal/httputil"
	"github.com/botwall-io/botwall/internal/middleware"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/service"
)

// SitesHandler serves the owner-facing site management endpoints. All
// of them run behind the owner JWT middleware.
type SitesHandler struct {
	registry *service.RegistryService
}

func NewSitesHandler(registry *service.RegistryService) *SitesHandler {
	return &SitesHandler{registry: registry}
}

// Register handles POST /api/v1/sites. The response is the only place
// the full API key is ever returned.
func (h *SitesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterSiteRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.registry.Register(r.Context(), middleware.GetOwnerID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, site.ToResponse(true))
}

// List handles GET /api/v1/sites. Keys are omitted from listings.
func (h *SitesHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.registry.ListByOwner(r.Context(), middleware.GetOwnerID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]*models.SiteResponse, 0, len(sites))
	for _, site := range sites {
		resp = append(resp, site.ToResponse(false))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sites": resp,
		"count": len(resp),
	})
}

// UpdateStatus handles PATCH /api/v1/sites/{id}/status.
func (h *SitesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.registry.SetStatus(r.Context(),
		middleware.GetOwnerID(r.Context()), r.PathValue("id"), models.SiteStatus(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, site.ToResponse(false))
}

// UpdateMonetization handles PATCH /api/v1/sites/{id}/monetization.
func (h *SitesHandler) UpdateMonetization(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMonetizationRequest
	if err := decodeJSON(r, &req); err != nil || req.Enabled == nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.registry.SetMonetization(r.Context(),
		middleware.GetOwnerID(r.Context()), r.PathValue("id"), *req.Enabled)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, site.ToResponse(false))
}

// decodeJSON decodes a request body strictly: unknown fields are
// rejected so plugin typos fail loudly instead of being ignored.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

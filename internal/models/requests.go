package models

import "time"

type RegisterSiteRequest struct {
	SiteURL    string `json:"site_url"`
	SiteName   string `json:"site_name"`
	SiteType   string `json:"site_type,omitempty"`
	AdminEmail string `json:"admin_email"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdateMonetizationRequest struct {
	Enabled *bool `json:"enabled"`
}

type ValidateKeyRequest struct {
	APIKey string `json:"api_key"`
}

// ValidateKeyResponse distinguishes the reason a key failed validation
// so a deployed plugin can tell a revoked key from a never-issued one.
type ValidateKeyResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"` // not_found, pending, suspended, revoked
	SiteID string `json:"site_id,omitempty"`
}

// IngestRequest is the request metadata the plugin reports for one
// bot-suspected hit. Unknown fields are rejected at decode time.
type IngestRequest struct {
	UserAgent string     `json:"user_agent"`
	Path      string     `json:"path"`
	SourceIP  string     `json:"source_ip,omitempty"`  // plugin-observed client IP; falls back to transport IP
	Timestamp *time.Time `json:"timestamp,omitempty"`  // hit time at the site; defaults to ingest time
	Referrer  string     `json:"referrer,omitempty"`
	Method    string     `json:"method,omitempty"`
}

type IngestResponse struct {
	Accepted       bool   `json:"accepted"`
	EventID        string `json:"event_id"`
	Classification string `json:"classification"`
}

type SiteResponse struct {
	ID                  string    `json:"id"`
	SiteURL             string    `json:"site_url"`
	SiteName            string    `json:"site_name"`
	SiteType            string    `json:"site_type"`
	AdminEmail          string    `json:"admin_email"`
	APIKey              string    `json:"api_key,omitempty"`
	Status              string    `json:"status"`
	MonetizationEnabled bool      `json:"monetization_enabled"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ToResponse converts a Site to its API representation. The API key is
// included only when includeKey is set; list responses omit it.
func (s *Site) ToResponse(includeKey bool) *SiteResponse {
	resp := &SiteResponse{
		ID:                  s.ID,
		SiteURL:             s.SiteURL,
		SiteName:            s.SiteName,
		SiteType:            string(s.SiteType),
		AdminEmail:          s.AdminEmail,
		Status:              string(s.Status),
		MonetizationEnabled: s.MonetizationEnabled,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
	if includeKey {
		resp.APIKey = s.APIKey
	}
	return resp
}

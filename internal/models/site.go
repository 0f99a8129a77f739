package models

import "time"

// SiteStatus is the lifecycle state of a registered site.
type SiteStatus string

const (
	SiteStatusPending   SiteStatus = "pending"
	SiteStatusActive    SiteStatus = "active"
	SiteStatusSuspended SiteStatus = "suspended"
	SiteStatusRevoked   SiteStatus = "revoked"
)

// Valid reports whether s is one of the known lifecycle states.
func (s SiteStatus) Valid() bool {
	switch s {
	case SiteStatusPending, SiteStatusActive, SiteStatusSuspended, SiteStatusRevoked:
		return true
	}
	return false
}

// SiteType describes how a site was registered.
type SiteType string

const (
	SiteTypeManual       SiteType = "manual"
	SiteTypeAutoDetected SiteType = "auto-detected"
)

// Valid reports whether t is a known site type.
func (t SiteType) Valid() bool {
	return t == SiteTypeManual || t == SiteTypeAutoDetected
}

// Site represents a registered content property owned by a user.
// The API key is generated once at creation and never reused, even
// after revocation.
type Site struct {
	ID      string `json:"id"` // UUIDv7, immutable
	OwnerID string `json:"owner_id"`

	SiteURL    string   `json:"site_url"` // normalized absolute URL, unique per owner
	SiteName   string   `json:"site_name"`
	SiteType   SiteType `json:"site_type"`
	AdminEmail string   `json:"admin_email"`

	APIKey string     `json:"api_key"` // unique system-wide, 1:1 with the site
	Status SiteStatus `json:"status"`

	MonetizationEnabled bool `json:"monetization_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ingestable reports whether events presented with this site's key
// should be accepted. Only active sites ingest.
func (s *Site) Ingestable() bool {
	return s.Status == SiteStatusActive
}

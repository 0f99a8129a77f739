package models

import "time"

// Classification is the verdict assigned to an ingested request.
type Classification string

const (
	ClassificationBot       Classification = "bot"
	ClassificationHuman     Classification = "human"
	ClassificationUncertain Classification = "uncertain"
)

// BotRequest is one classified hit against a registered site.
// Rows are append-only: written once by the ingestor, never updated.
// They reference the site by id and remain valid historical fact even
// after the site is revoked.
type BotRequest struct {
	ID     string `json:"id"` // UUIDv7
	SiteID string `json:"site_id"`

	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"user_agent"`
	SourceIP  string    `json:"source_ip"` // truncated for privacy before storage
	Path      string    `json:"path"`

	Classification Classification `json:"classification"`
	BotFamily      string         `json:"bot_family,omitempty"` // e.g. "googlebot", empty when unknown
}

// IsBot reports whether the event was classified as automated traffic.
func (b *BotRequest) IsBot() bool {
	return b.Classification == ClassificationBot
}

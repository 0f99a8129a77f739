package models

import "time"

// AnalyticsSummary is derived entirely from the BotRequest log for one
// site over one period. The raw log is the source of truth; a summary
// can always be recomputed from it.
type AnalyticsSummary struct {
	SiteID string `json:"site_id"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	RequestCount     int64   `json:"request_count"`
	BotCount         int64   `json:"bot_count"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
}

// DailyRollup is the incrementally materialized per-day summary row.
// Counters only grow as events for the day are ingested; the rollup
// worker upserts deltas, never overwrites.
type DailyRollup struct {
	SiteID           string    `json:"site_id"`
	Day              time.Time `json:"day"` // midnight UTC
	RequestCount     int64     `json:"request_count"`
	BotCount         int64     `json:"bot_count"`
	EstimatedRevenue float64   `json:"estimated_revenue"`
}

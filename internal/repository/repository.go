package repository

import (
	"context"
	"errors"
	"time"

	"github.com/botwall-io/botwall/internal/models"
)

var (
	ErrSiteNotFound    = errors.New("site not found")
	ErrSiteExists      = errors.New("site already registered for owner and URL")
	ErrDuplicateAPIKey = errors.New("api key already in use")
)

// Repository is the persistence contract for sites, the append-only
// bot-request log, and materialized daily rollups.
type Repository interface {
	CreateSite(ctx context.Context, site *models.Site) error
	GetSiteByID(ctx context.Context, id string) (*models.Site, error)
	GetSiteByAPIKey(ctx context.Context, apiKey string) (*models.Site, error)
	ListSitesByOwner(ctx context.Context, ownerID string) ([]*models.Site, error)
	UpdateSiteStatus(ctx context.Context, siteID string, status models.SiteStatus) (*models.Site, error)
	UpdateSiteMonetization(ctx context.Context, siteID string, enabled bool) (*models.Site, error)

	CreateBotRequest(ctx context.Context, event *models.BotRequest) error
	AggregateEvents(ctx context.Context, siteID string, from, to time.Time) (requests, bots int64, err error)

	UpsertDailyRollup(ctx context.Context, delta *models.DailyRollup) error
	GetDailyRollups(ctx context.Context, siteID string, from, to time.Time) ([]*models.DailyRollup, error)
}

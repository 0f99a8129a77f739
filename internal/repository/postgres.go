package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botwall-io/botwall/internal/models"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// Ping verifies database connectivity for readiness checks.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// =============================================================================
// SITES
// =============================================================================

func (r *PostgresRepository) CreateSite(ctx context.Context, site *models.Site) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO sites (id, owner_id, site_url, site_name, site_type, admin_email,
		                   api_key, status, monetization_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		site.ID, site.OwnerID, site.SiteURL, site.SiteName, site.SiteType,
		site.AdminEmail, site.APIKey, site.Status, site.MonetizationEnabled,
		site.CreatedAt, site.UpdatedAt,
	)

	if err != nil {
		// Unique constraint violation (23505): which index tells us
		// whether the owner/URL pair or the generated key collided.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "sites_api_key_key" {
				return ErrDuplicateAPIKey
			}
			return ErrSiteExists
		}
		return fmt.Errorf("failed to create site: %w", err)
	}

	return nil
}

const siteColumns = `id, owner_id, site_url, site_name, site_type, admin_email,
       api_key, status, monetization_enabled, created_at, updated_at`

func scanSite(row pgx.Row) (*models.Site, error) {
	var site models.Site
	err := row.Scan(
		&site.ID, &site.OwnerID, &site.SiteURL, &site.SiteName, &site.SiteType,
		&site.AdminEmail, &site.APIKey, &site.Status, &site.MonetizationEnabled,
		&site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *PostgresRepository) GetSiteByID(ctx context.Context, id string) (*models.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`

	site, err := scanSite(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	return site, nil
}

// GetSiteByAPIKey is the ingestion hot path; sites.api_key carries a
// unique index so this is a single indexed lookup.
func (r *PostgresRepository) GetSiteByAPIKey(ctx context.Context, apiKey string) (*models.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + siteColumns + ` FROM sites WHERE api_key = $1`

	site, err := scanSite(r.pool.QueryRow(ctx, query, apiKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to get site by api key: %w", err)
	}

	return site, nil
}

func (r *PostgresRepository) ListSitesByOwner(ctx context.Context, ownerID string) ([]*models.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + siteColumns + ` FROM sites WHERE owner_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sites: %w", err)
	}

	return sites, nil
}

func (r *PostgresRepository) UpdateSiteStatus(ctx context.Context, siteID string, status models.SiteStatus) (*models.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE sites SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + siteColumns

	site, err := scanSite(r.pool.QueryRow(ctx, query, siteID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to update site status: %w", err)
	}

	return site, nil
}

func (r *PostgresRepository) UpdateSiteMonetization(ctx context.Context, siteID string, enabled bool) (*models.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE sites SET monetization_enabled = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + siteColumns

	site, err := scanSite(r.pool.QueryRow(ctx, query, siteID, enabled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to update site monetization: %w", err)
	}

	return site, nil
}

// =============================================================================
// BOT REQUESTS (append-only)
// =============================================================================

func (r *PostgresRepository) CreateBotRequest(ctx context.Context, event *models.BotRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO bot_requests (id, site_id, timestamp, user_agent, source_ip,
		                          path, classification, bot_family)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID, event.SiteID, event.Timestamp, event.UserAgent,
		event.SourceIP, event.Path, event.Classification, event.BotFamily,
	)
	if err != nil {
		return fmt.Errorf("failed to create bot request: %w", err)
	}

	return nil
}

// AggregateEvents folds the raw event log for a site over [from, to).
// Recomputing over the same rows always yields the same counts.
func (r *PostgresRepository) AggregateEvents(ctx context.Context, siteID string, from, to time.Time) (int64, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE classification = 'bot')
		FROM bot_requests
		WHERE site_id = $1 AND timestamp >= $2 AND timestamp < $3
	`

	var requests, bots int64
	err := r.pool.QueryRow(ctx, query, siteID, from, to).Scan(&requests, &bots)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate events: %w", err)
	}

	return requests, bots, nil
}

// =============================================================================
// DAILY ROLLUPS (monotonic, incrementally materialized)
// =============================================================================

// UpsertDailyRollup folds a delta into the site's rollup row for the
// day. Counters only ever grow; the raw log remains the source of
// truth for full recomputation.
func (r *PostgresRepository) UpsertDailyRollup(ctx context.Context, delta *models.DailyRollup) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO daily_rollups (site_id, day, request_count, bot_count, estimated_revenue)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (site_id, day) DO UPDATE SET
			request_count     = daily_rollups.request_count + EXCLUDED.request_count,
			bot_count         = daily_rollups.bot_count + EXCLUDED.bot_count,
			estimated_revenue = daily_rollups.estimated_revenue + EXCLUDED.estimated_revenue
	`

	_, err := r.pool.Exec(ctx, query,
		delta.SiteID, delta.Day, delta.RequestCount, delta.BotCount, delta.EstimatedRevenue,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily rollup: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetDailyRollups(ctx context.Context, siteID string, from, to time.Time) ([]*models.DailyRollup, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT site_id, day, request_count, bot_count, estimated_revenue
		FROM daily_rollups
		WHERE site_id = $1 AND day >= $2 AND day < $3
		ORDER BY day
	`

	rows, err := r.pool.Query(ctx, query, siteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily rollups: %w", err)
	}
	defer rows.Close()

	var rollups []*models.DailyRollup
	for rows.Next() {
		var rollup models.DailyRollup
		err := rows.Scan(
			&rollup.SiteID, &rollup.Day, &rollup.RequestCount,
			&rollup.BotCount, &rollup.EstimatedRevenue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily rollup: %w", err)
		}
		rollups = append(rollups, &rollup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily rollups: %w", err)
	}

	return rollups, nil
}

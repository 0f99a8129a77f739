package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/botwall-io/botwall/internal/apikey"
	"github.com/botwall-io/botwall/internal/cache"
	"github.com/botwall-io/botwall/internal/logging"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/repository"
)

// keyRetries bounds how often registration retries key generation when
// the storage uniqueness constraint reports a collision. With 256-bit
// keys a single retry is already astronomically unlikely.
const keyRetries = 3

// RegistryService owns site records: creation, uniqueness enforcement,
// lookup, and the status lifecycle.
type RegistryService struct {
	repo     repository.Repository
	keyCache cache.KeyCache
	logger   *logging.Logger
}

func NewRegistryService(repo repository.Repository, keyCache cache.KeyCache, logger *logging.Logger) *RegistryService {
	return &RegistryService{
		repo:     repo,
		keyCache: keyCache,
		logger:   logger,
	}
}

// Register creates a site for the owner, allocating its id and API
// key. A second registration of the same (owner, url) pair fails with
// ErrConflict; the caller fetches the existing record instead.
func (s *RegistryService) Register(ctx context.Context, ownerID string, req *models.RegisterSiteRequest) (*models.Site, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: missing owner", ErrInvalidInput)
	}

	siteURL, err := NormalizeSiteURL(req.SiteURL)
	if err != nil {
		return nil, err
	}

	siteType := models.SiteType(req.SiteType)
	if req.SiteType == "" {
		siteType = models.SiteTypeManual
	}
	if !siteType.Valid() {
		return nil, fmt.Errorf("%w: unknown site type %q", ErrInvalidInput, req.SiteType)
	}

	if req.SiteName == "" {
		return nil, fmt.Errorf("%w: missing site name", ErrInvalidInput)
	}
	if req.AdminEmail != "" && !strings.Contains(req.AdminEmail, "@") {
		return nil, fmt.Errorf("%w: malformed admin email", ErrInvalidInput)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate site ID: %w", err)
	}

	now := time.Now().UTC()
	site := &models.Site{
		ID:                  id.String(),
		OwnerID:             ownerID,
		SiteURL:             siteURL,
		SiteName:            req.SiteName,
		SiteType:            siteType,
		AdminEmail:          req.AdminEmail,
		Status:              models.SiteStatusActive,
		MonetizationEnabled: false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// Randomness alone is not trusted for key uniqueness: the storage
	// constraint is authoritative, and a collision just regenerates.
	for attempt := 0; attempt < keyRetries; attempt++ {
		site.APIKey, err = apikey.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate api key: %w", err)
		}

		err = s.repo.CreateSite(ctx, site)
		if err == nil {
			s.logger.InfoContext(ctx, "site registered",
				logging.OwnerID(ownerID),
				logging.SiteID(site.ID),
				logging.SiteURL(site.SiteURL),
			)
			return site, nil
		}
		if errors.Is(err, repository.ErrSiteExists) {
			return nil, fmt.Errorf("%w: site already registered for this URL", ErrConflict)
		}
		if errors.Is(err, repository.ErrDuplicateAPIKey) {
			continue
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	return nil, fmt.Errorf("%w: key generation kept colliding", ErrTransient)
}

// ListByOwner returns the owner's sites in creation order.
func (s *RegistryService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Site, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: missing owner", ErrInvalidInput)
	}
	sites, err := s.repo.ListSitesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return sites, nil
}

// GetOwnedSite loads a site and enforces ownership.
func (s *RegistryService) GetOwnedSite(ctx context.Context, ownerID, siteID string) (*models.Site, error) {
	site, err := s.repo.GetSiteByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, repository.ErrSiteNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if site.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return site, nil
}

// SetStatus moves an owned site through its lifecycle and invalidates
// the key cache so revocation is visible to ingestion immediately, not
// one staleness window later.
func (s *RegistryService) SetStatus(ctx context.Context, ownerID, siteID string, status models.SiteStatus) (*models.Site, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	site, err := s.GetOwnedSite(ctx, ownerID, siteID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateSiteStatus(ctx, site.ID, status)
	if err != nil {
		if errors.Is(err, repository.ErrSiteNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	if err := s.keyCache.Invalidate(ctx, site.APIKey); err != nil {
		s.logger.WarnContext(ctx, "key cache invalidation failed",
			logging.SiteID(site.ID),
			logging.Error(err),
		)
	}

	s.logger.InfoContext(ctx, "site status changed",
		logging.SiteID(site.ID),
		logging.OwnerID(ownerID),
		"status", string(status),
	)
	return updated, nil
}

// SetMonetization toggles monetization for an owned site.
func (s *RegistryService) SetMonetization(ctx context.Context, ownerID, siteID string, enabled bool) (*models.Site, error) {
	site, err := s.GetOwnedSite(ctx, ownerID, siteID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateSiteMonetization(ctx, site.ID, enabled)
	if err != nil {
		if errors.Is(err, repository.ErrSiteNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	// Monetization feeds pricing at ingest time; drop the cached copy
	// so the next event sees the new flag.
	if err := s.keyCache.Invalidate(ctx, site.APIKey); err != nil {
		s.logger.WarnContext(ctx, "key cache invalidation failed",
			logging.SiteID(site.ID),
			logging.Error(err),
		)
	}

	return updated, nil
}

// NormalizeSiteURL validates and canonicalizes a site URL: https/http
// scheme required, host lowercased, default ports, trailing slash,
// fragment and query dropped.
func NormalizeSiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: missing site url", ErrInvalidInput)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: malformed site url", ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: site url must be http or https", ErrInvalidInput)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: site url missing host", ErrInvalidInput)
	}

	host := strings.ToLower(u.Host)
	if u.Scheme == "http" {
		host = strings.TrimSuffix(host, ":80")
	} else {
		host = strings.TrimSuffix(host, ":443")
	}

	path := strings.TrimSuffix(u.Path, "/")

	return u.Scheme + "://" + host + path, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/botwall-io/botwall/internal/cache"
	"github.com/botwall-io/botwall/internal/logging"
	"github.com/botwall-io/botwall/internal/metrics"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/repository"
)

// Validation reasons reported to callers when a key is rejected.
const (
	ReasonNotFound  = "not_found"
	ReasonPending   = "pending"
	ReasonSuspended = "suspended"
	ReasonRevoked   = "revoked"
)

// ValidationResult is the outcome of checking one API key. Site is
// populated only for valid keys.
type ValidationResult struct {
	Valid  bool
	Site   *models.Site
	Reason string
}

// ValidatorService resolves API keys to sites, consulting the cache
// before storage. Rejection never distinguishes "no such key" from
// "revoked key" beyond the reason string: both produce Valid=false.
type ValidatorService struct {
	repo     repository.Repository
	keyCache cache.KeyCache
	logger   *logging.Logger
}

func NewValidatorService(repo repository.Repository, keyCache cache.KeyCache, logger *logging.Logger) *ValidatorService {
	return &ValidatorService{
		repo:     repo,
		keyCache: keyCache,
		logger:   logger,
	}
}

// Validate checks an API key and returns its verdict. Storage failures
// surface as ErrTransient so the caller can distinguish "rejected" from
// "could not decide".
func (s *ValidatorService) Validate(ctx context.Context, apiKey string) (*ValidationResult, error) {
	if apiKey == "" {
		metrics.ValidationsTotal.WithLabelValues("rejected").Inc()
		return &ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
	}

	site, err := s.resolve(ctx, apiKey)
	if err != nil {
		if errors.Is(err, repository.ErrSiteNotFound) {
			metrics.ValidationsTotal.WithLabelValues("rejected").Inc()
			return &ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		metrics.ValidationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	if reason := rejectionReason(site.Status); reason != "" {
		metrics.ValidationsTotal.WithLabelValues("rejected").Inc()
		return &ValidationResult{Valid: false, Reason: reason}, nil
	}

	metrics.ValidationsTotal.WithLabelValues("valid").Inc()
	return &ValidationResult{Valid: true, Site: site}, nil
}

// resolve looks the key up in the cache first, falling back to storage
// on a miss and writing the entry back. Cache failures degrade to a
// storage read rather than failing the validation.
func (s *ValidatorService) resolve(ctx context.Context, apiKey string) (*models.Site, error) {
	site, err := s.keyCache.Get(ctx, apiKey)
	if err == nil {
		metrics.KeyCacheHits.Inc()
		return site, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "key cache read failed", logging.Error(err))
	}
	metrics.KeyCacheMisses.Inc()

	site, err = s.repo.GetSiteByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	if err := s.keyCache.Set(ctx, apiKey, site); err != nil {
		s.logger.WarnContext(ctx, "key cache write failed", logging.Error(err))
	}
	return site, nil
}

func rejectionReason(status models.SiteStatus) string {
	switch status {
	case models.SiteStatusActive:
		return ""
	case models.SiteStatusPending:
		return ReasonPending
	case models.SiteStatusSuspended:
		return ReasonSuspended
	default:
		return ReasonRevoked
	}
}

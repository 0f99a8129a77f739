package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/botwall-io/botwall/internal/logging"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/repository"
)

// AnalyticsService answers owner-facing traffic questions. Summaries
// are computed from the raw event log on demand; the daily rollups are
// the pre-materialized fast path for dashboard history.
type AnalyticsService struct {
	repo    repository.Repository
	pricing PricingPolicy
	logger  *logging.Logger
}

func NewAnalyticsService(repo repository.Repository, pricing PricingPolicy, logger *logging.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:    repo,
		pricing: pricing,
		logger:  logger,
	}
}

// Summarize aggregates the site's events over [from, to). A site with
// no events in the period yields a zero summary, not an error.
func (s *AnalyticsService) Summarize(ctx context.Context, ownerID, siteID string, from, to time.Time) (*models.AnalyticsSummary, error) {
	site, err := s.ownedSite(ctx, ownerID, siteID)
	if err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: period end must follow period start", ErrInvalidInput)
	}

	requests, bots, err := s.repo.AggregateEvents(ctx, siteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	return &models.AnalyticsSummary{
		SiteID:           siteID,
		PeriodStart:      from,
		PeriodEnd:        to,
		RequestCount:     requests,
		BotCount:         bots,
		EstimatedRevenue: s.pricing.BotRevenue(site, bots),
	}, nil
}

// DailyHistory returns the materialized per-day rollups for the site
// over [from, to), oldest first.
func (s *AnalyticsService) DailyHistory(ctx context.Context, ownerID, siteID string, from, to time.Time) ([]*models.DailyRollup, error) {
	if _, err := s.ownedSite(ctx, ownerID, siteID); err != nil {
		return nil, err
	}

	rollups, err := s.repo.GetDailyRollups(ctx, siteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return rollups, nil
}

func (s *AnalyticsService) ownedSite(ctx context.Context, ownerID, siteID string) (*models.Site, error) {
	if ownerID == "" || siteID == "" {
		return nil, fmt.Errorf("%w: missing owner or site", ErrInvalidInput)
	}
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

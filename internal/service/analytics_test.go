package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botwall-io/botwall/internal/messaging"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/repository"
)

func newTestAnalytics(repo repository.Repository) *AnalyticsService {
	return NewAnalyticsService(repo, NewFlatRate(0.001), testLogger())
}

func ingestTestEvents(t *testing.T, repo repository.Repository, apiKey string, userAgents ...string) {
	t.Helper()
	svc := newTestIngest(repo, messaging.NoOpPublisher{})
	for i, ua := range userAgents {
		_, err := svc.Ingest(context.Background(), apiKey, &models.IngestRequest{
			UserAgent: ua,
			Path:      "/page",
			SourceIP:  "203.0.113.10",
		}, "")
		require.NoError(t, err, "event %d", i)
	}
}

func TestSummarize(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")
	ingestTestEvents(t, repo, site.APIKey,
		"Gptbot/1.0",
		"curl/8.5.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15",
	)

	svc := newTestAnalytics(repo)
	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)

	summary, err := svc.Summarize(context.Background(), "owner-1", site.ID, from, to)
	require.NoError(t, err)

	assert.Equal(t, site.ID, summary.SiteID)
	assert.Equal(t, int64(3), summary.RequestCount)
	assert.Equal(t, int64(2), summary.BotCount)
	assert.Zero(t, summary.EstimatedRevenue) // monetization off
}

func TestSummarize_Revenue(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")
	ctx := context.Background()

	_, err := repo.UpdateSiteMonetization(ctx, site.ID, true)
	require.NoError(t, err)

	ingestTestEvents(t, repo, site.APIKey, "Gptbot/1.0", "claudebot/1.0")

	svc := newTestAnalytics(repo)
	summary, err := svc.Summarize(ctx, "owner-1", site.ID,
		time.Now().UTC().Add(-time.Hour), time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.BotCount)
	assert.InDelta(t, 0.002, summary.EstimatedRevenue, 1e-9)
}

func TestSummarize_EmptyPeriod(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")

	svc := newTestAnalytics(repo)
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	summary, err := svc.Summarize(context.Background(), "owner-1", site.ID, from, to)
	require.NoError(t, err)
	assert.Zero(t, summary.RequestCount)
	assert.Zero(t, summary.BotCount)
	assert.Zero(t, summary.EstimatedRevenue)
}

func TestSummarize_InvalidPeriod(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")

	svc := newTestAnalytics(repo)
	now := time.Now().UTC()
	_, err := svc.Summarize(context.Background(), "owner-1", site.ID, now, now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummarize_Ownership(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")

	svc := newTestAnalytics(repo)
	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC()

	_, err := svc.Summarize(context.Background(), "owner-2", site.ID, from, to)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Summarize(context.Background(), "owner-1", "00000000-0000-0000-0000-000000000000", from, to)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDailyHistory(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")
	ctx := context.Background()

	day1 := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, repo.UpsertDailyRollup(ctx, &models.DailyRollup{
		SiteID: site.ID, Day: day1, RequestCount: 10, BotCount: 7, EstimatedRevenue: 0.007,
	}))
	require.NoError(t, repo.UpsertDailyRollup(ctx, &models.DailyRollup{
		SiteID: site.ID, Day: day2, RequestCount: 4, BotCount: 1, EstimatedRevenue: 0.001,
	}))

	svc := newTestAnalytics(repo)
	rollups, err := svc.DailyHistory(ctx, "owner-1", site.ID, day1, day2.AddDate(0, 0, 1))
	require.NoError(t, err)

	require.Len(t, rollups, 2)
	assert.Equal(t, day1, rollups[0].Day)
	assert.Equal(t, int64(7), rollups[0].BotCount)
	assert.Equal(t, day2, rollups[1].Day)

	_, err = svc.DailyHistory(ctx, "owner-2", site.ID, day1, day2)
	assert.ErrorIs(t, err, ErrForbidden)
}

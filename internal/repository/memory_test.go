package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botwall-io/botwall/internal/models"
)

func newTestSite(ownerID, url, key string) *models.Site {
	now := time.Now().UTC()
	return &models.Site{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		SiteURL:    url,
		SiteName:   gofakeit.Company(),
		SiteType:   models.SiteTypeManual,
		AdminEmail: gofakeit.Email(),
		APIKey:     key,
		Status:     models.SiteStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCreateSiteRejectsDuplicateOwnerURL(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateSite(ctx, newTestSite("owner-1", "https://example.com", "key-1")))

	err := repo.CreateSite(ctx, newTestSite("owner-1", "https://example.com", "key-2"))
	assert.ErrorIs(t, err, ErrSiteExists)

	// Same URL under a different owner is fine
	require.NoError(t, repo.CreateSite(ctx, newTestSite("owner-2", "https://example.com", "key-3")))
}

func TestCreateSiteRejectsDuplicateAPIKey(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateSite(ctx, newTestSite("owner-1", "https://a.example.com", "key-1")))

	err := repo.CreateSite(ctx, newTestSite("owner-2", "https://b.example.com", "key-1"))
	assert.ErrorIs(t, err, ErrDuplicateAPIKey)
}

func TestConcurrentCreateSiteOneWinner(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateSite(ctx, newTestSite("owner-1", "https://example.com", uuid.New().String()))
		}(i)
	}
	wg.Wait()

	var winners int
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSiteExists)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestGetSiteByAPIKey(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	site := newTestSite("owner-1", "https://example.com", "key-1")
	require.NoError(t, repo.CreateSite(ctx, site))

	got, err := repo.GetSiteByAPIKey(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, site.ID, got.ID)

	_, err = repo.GetSiteByAPIKey(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestListSitesByOwnerInsertionOrder(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first := newTestSite("owner-1", "https://a.example.com", "key-a")
	second := newTestSite("owner-1", "https://b.example.com", "key-b")
	other := newTestSite("owner-2", "https://c.example.com", "key-c")

	require.NoError(t, repo.CreateSite(ctx, first))
	require.NoError(t, repo.CreateSite(ctx, other))
	require.NoError(t, repo.CreateSite(ctx, second))

	sites, err := repo.ListSitesByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, first.ID, sites[0].ID)
	assert.Equal(t, second.ID, sites[1].ID)
}

func TestUpdateSiteStatusTouchesUpdatedAt(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	site := newTestSite("owner-1", "https://example.com", "key-1")
	site.UpdatedAt = site.UpdatedAt.Add(-time.Hour)
	require.NoError(t, repo.CreateSite(ctx, site))

	updated, err := repo.UpdateSiteStatus(ctx, site.ID, models.SiteStatusRevoked)
	require.NoError(t, err)
	assert.Equal(t, models.SiteStatusRevoked, updated.Status)
	assert.True(t, updated.UpdatedAt.After(site.UpdatedAt))

	_, err = repo.UpdateSiteStatus(ctx, uuid.New().String(), models.SiteStatusActive)
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestAggregateEventsRange(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	site := newTestSite("owner-1", "https://example.com", "key-1")
	require.NoError(t, repo.CreateSite(ctx, site))

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []*models.BotRequest{
		{ID: uuid.New().String(), SiteID: site.ID, Timestamp: base, Classification: models.ClassificationBot},
		{ID: uuid.New().String(), SiteID: site.ID, Timestamp: base.Add(time.Minute), Classification: models.ClassificationHuman},
		{ID: uuid.New().String(), SiteID: site.ID, Timestamp: base.Add(time.Hour * 48), Classification: models.ClassificationBot}, // outside range
		{ID: uuid.New().String(), SiteID: "other-site", Timestamp: base, Classification: models.ClassificationBot},
	}
	for _, e := range events {
		require.NoError(t, repo.CreateBotRequest(ctx, e))
	}

	requests, bots, err := repo.AggregateEvents(ctx, site.ID, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), requests)
	assert.Equal(t, int64(1), bots)
}

func TestUpsertDailyRollupAccumulates(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	delta := &models.DailyRollup{
		SiteID: "site-1", Day: day,
		RequestCount: 1, BotCount: 1, EstimatedRevenue: 0.001,
	}

	require.NoError(t, repo.UpsertDailyRollup(ctx, delta))
	require.NoError(t, repo.UpsertDailyRollup(ctx, delta))

	rollups, err := repo.GetDailyRollups(ctx, "site-1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	assert.Equal(t, int64(2), rollups[0].RequestCount)
	assert.Equal(t, int64(2), rollups[0].BotCount)
	assert.InDelta(t, 0.002, rollups[0].EstimatedRevenue, 1e-9)
}

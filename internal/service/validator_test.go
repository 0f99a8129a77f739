package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botwall-io/botwall/internal/cache"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/repository"
)

// countingCache records traffic so tests can assert which path a
// validation took.
type countingCache struct {
	entries map[string]*models.Site
	gets    int
	sets    int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[string]*models.Site)}
}

func (c *countingCache) Get(ctx context.Context, apiKey string) (*models.Site, error) {
	c.gets++
	if site, ok := c.entries[apiKey]; ok {
		return site, nil
	}
	return nil, cache.ErrMiss
}

func (c *countingCache) Set(ctx context.Context, apiKey string, site *models.Site) error {
	c.sets++
	c.entries[apiKey] = site
	return nil
}

func (c *countingCache) Invalidate(ctx context.Context, apiKey string) error {
	delete(c.entries, apiKey)
	return nil
}

func (c *countingCache) Close() error { return nil }

func registerTestSite(t *testing.T, repo repository.Repository, ownerID string) *models.Site {
	t.Helper()
	svc := NewRegistryService(repo, cache.NoOpKeyCache{}, testLogger())
	site, err := svc.Register(context.Background(), ownerID, &models.RegisterSiteRequest{
		SiteURL:  "https://" + ownerID + ".example.com",
		SiteName: ownerID,
	})
	require.NoError(t, err)
	return site
}

func TestValidate(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")
	svc := NewValidatorService(repo, cache.NoOpKeyCache{}, testLogger())
	ctx := context.Background()

	res, err := svc.Validate(ctx, site.APIKey)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, site.ID, res.Site.ID)
	assert.Empty(t, res.Reason)
}

func TestValidate_UnknownKey(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	svc := NewValidatorService(repo, cache.NoOpKeyCache{}, testLogger())

	res, err := svc.Validate(context.Background(), "bw_does-not-exist")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonNotFound, res.Reason)
	assert.Nil(t, res.Site)
}

func TestValidate_EmptyKey(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	svc := NewValidatorService(repo, cache.NoOpKeyCache{}, testLogger())

	res, err := svc.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonNotFound, res.Reason)
}

func TestValidate_InactiveStatuses(t *testing.T) {
	tests := []struct {
		status models.SiteStatus
		reason string
	}{
		{models.SiteStatusPending, ReasonPending},
		{models.SiteStatusSuspended, ReasonSuspended},
		{models.SiteStatusRevoked, ReasonRevoked},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			repo := repository.NewInMemoryRepository()
			site := registerTestSite(t, repo, "owner-1")
			ctx := context.Background()

			_, err := repo.UpdateSiteStatus(ctx, site.ID, tt.status)
			require.NoError(t, err)

			svc := NewValidatorService(repo, cache.NoOpKeyCache{}, testLogger())
			res, err := svc.Validate(ctx, site.APIKey)
			require.NoError(t, err)
			assert.False(t, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestValidate_CachesOnMiss(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")
	kc := newCountingCache()
	svc := NewValidatorService(repo, kc, testLogger())
	ctx := context.Background()

	res, err := svc.Validate(ctx, site.APIKey)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 1, kc.sets)

	// Second call is served from the cache.
	res, err = svc.Validate(ctx, site.APIKey)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 2, kc.gets)
	assert.Equal(t, 1, kc.sets)
}

func TestValidate_CachedStatusStillChecked(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	site := registerTestSite(t, repo, "owner-1")
	kc := newCountingCache()
	svc := NewValidatorService(repo, kc, testLogger())
	ctx := context.Background()

	_, err := svc.Validate(ctx, site.APIKey)
	require.NoError(t, err)

	// Simulate the cached copy going stale after a suspension plus an
	// invalidation, the way SetStatus drives it.
	_, err = repo.UpdateSiteStatus(ctx, site.ID, models.SiteStatusSuspended)
	require.NoError(t, err)
	require.NoError(t, kc.Invalidate(ctx, site.APIKey))

	res, err := svc.Validate(ctx, site.APIKey)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonSuspended, res.Reason)
}

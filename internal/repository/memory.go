package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/botwall-io/botwall/internal/models"
)

// InMemoryRepository is a development and test implementation with the
// same uniqueness semantics as the postgres schema.
type InMemoryRepository struct {
	mu           sync.RWMutex
	sites        map[string]*models.Site // by ID
	sitesByKey   map[string]*models.Site // by APIKey
	ownerURLs    map[string]string       // ownerID+"\x00"+siteURL -> siteID
	events       []*models.BotRequest
	rollups      map[string]*models.DailyRollup // siteID+"\x00"+day
	creationSeq  []string                       // site IDs in insertion order
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sites:      make(map[string]*models.Site),
		sitesByKey: make(map[string]*models.Site),
		ownerURLs:  make(map[string]string),
		rollups:    make(map[string]*models.DailyRollup),
	}
}

func ownerURLKey(ownerID, siteURL string) string {
	return ownerID + "\x00" + siteURL
}

func (r *InMemoryRepository) CreateSite(ctx context.Context, site *models.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ownerURLs[ownerURLKey(site.OwnerID, site.SiteURL)]; exists {
		return ErrSiteExists
	}
	if _, exists := r.sitesByKey[site.APIKey]; exists {
		return ErrDuplicateAPIKey
	}

	copied := *site
	r.sites[site.ID] = &copied
	r.sitesByKey[site.APIKey] = &copied
	r.ownerURLs[ownerURLKey(site.OwnerID, site.SiteURL)] = site.ID
	r.creationSeq = append(r.creationSeq, site.ID)
	return nil
}

func (r *InMemoryRepository) GetSiteByID(ctx context.Context, id string) (*models.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	site, exists := r.sites[id]
	if !exists {
		return nil, ErrSiteNotFound
	}
	copied := *site
	return &copied, nil
}

func (r *InMemoryRepository) GetSiteByAPIKey(ctx context.Context, apiKey string) (*models.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	site, exists := r.sitesByKey[apiKey]
	if !exists {
		return nil, ErrSiteNotFound
	}
	copied := *site
	return &copied, nil
}

func (r *InMemoryRepository) ListSitesByOwner(ctx context.Context, ownerID string) ([]*models.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sites []*models.Site
	for _, id := range r.creationSeq {
		site := r.sites[id]
		if site != nil && site.OwnerID == ownerID {
			copied := *site
			sites = append(sites, &copied)
		}
	}
	return sites, nil
}

func (r *InMemoryRepository) UpdateSiteStatus(ctx context.Context, siteID string, status models.SiteStatus) (*models.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	site, exists := r.sites[siteID]
	if !exists {
		return nil, ErrSiteNotFound
	}
	site.Status = status
	site.UpdatedAt = time.Now().UTC()
	copied := *site
	return &copied, nil
}

func (r *InMemoryRepository) UpdateSiteMonetization(ctx context.Context, siteID string, enabled bool) (*models.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	site, exists := r.sites[siteID]
	if !exists {
		return nil, ErrSiteNotFound
	}
	site.MonetizationEnabled = enabled
	site.UpdatedAt = time.Now().UTC()
	copied := *site
	return &copied, nil
}

func (r *InMemoryRepository) CreateBotRequest(ctx context.Context, event *models.BotRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *InMemoryRepository) AggregateEvents(ctx context.Context, siteID string, from, to time.Time) (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var requests, bots int64
	for _, event := range r.events {
		if event.SiteID != siteID {
			continue
		}
		if event.Timestamp.Before(from) || !event.Timestamp.Before(to) {
			continue
		}
		requests++
		if event.Classification == models.ClassificationBot {
			bots++
		}
	}
	return requests, bots, nil
}

func rollupKey(siteID string, day time.Time) string {
	return siteID + "\x00" + day.UTC().Format("2006-01-02")
}

func (r *InMemoryRepository) UpsertDailyRollup(ctx context.Context, delta *models.DailyRollup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := rollupKey(delta.SiteID, delta.Day)
	existing, ok := r.rollups[key]
	if !ok {
		copied := *delta
		r.rollups[key] = &copied
		return nil
	}
	existing.RequestCount += delta.RequestCount
	existing.BotCount += delta.BotCount
	existing.EstimatedRevenue += delta.EstimatedRevenue
	return nil
}

func (r *InMemoryRepository) GetDailyRollups(ctx context.Context, siteID string, from, to time.Time) ([]*models.DailyRollup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rollups []*models.DailyRollup
	for _, rollup := range r.rollups {
		if rollup.SiteID != siteID {
			continue
		}
		if rollup.Day.Before(from) || !rollup.Day.Before(to) {
			continue
		}
		copied := *rollup
		rollups = append(rollups, &copied)
	}
	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Day.Before(rollups[j].Day)
	})
	return rollups, nil
}

// EventCount reports the number of persisted events. Test helper.
func (r *InMemoryRepository) EventCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

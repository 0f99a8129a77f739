package aggregator

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botwall-io/botwall/internal/logging"
	"github.com/botwall-io/botwall/internal/messaging"
	"github.com/botwall-io/botwall/internal/repository"
)

// inlineBus delivers published messages synchronously to the single
// registered handler.
type inlineBus struct {
	handler      messaging.Handler
	unsubscribed bool
}

func (b *inlineBus) PublishJSON(ctx context.Context, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if b.handler != nil {
		return b.handler(ctx, data)
	}
	return nil
}

func (b *inlineBus) QueueSubscribe(subject, queue string, handler messaging.Handler) (func() error, error) {
	b.handler = handler
	return func() error {
		b.unsubscribed = true
		b.handler = nil
		return nil
	}, nil
}

func (b *inlineBus) Close() error { return nil }

func newTestWorker(t *testing.T) (*Worker, *repository.InMemoryRepository, *inlineBus) {
	t.Helper()
	repo := repository.NewInMemoryRepository()
	bus := &inlineBus{}
	worker := NewWorker(repo, bus, logging.New(slog.LevelError, "text"))
	require.NoError(t, worker.Start())
	return worker, repo, bus
}

func TestWorker_AccumulatesDeltas(t *testing.T) {
	worker, repo, bus := newTestWorker(t)
	defer worker.Stop()
	ctx := context.Background()

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	deltas := []messaging.RollupDelta{
		{SiteID: "site-1", Day: day, IsBot: true, Revenue: 0.001},
		{SiteID: "site-1", Day: day, IsBot: false},
		{SiteID: "site-1", Day: day, IsBot: true, Revenue: 0.001},
	}
	for _, d := range deltas {
		require.NoError(t, bus.PublishJSON(ctx, messaging.SubjectRollupDeltas, d))
	}

	rollups, err := repo.GetDailyRollups(ctx, "site-1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rollups, 1)

	assert.Equal(t, int64(3), rollups[0].RequestCount)
	assert.Equal(t, int64(2), rollups[0].BotCount)
	assert.InDelta(t, 0.002, rollups[0].EstimatedRevenue, 1e-9)
}

func TestWorker_SplitsAcrossDays(t *testing.T) {
	worker, repo, bus := newTestWorker(t)
	defer worker.Stop()
	ctx := context.Background()

	day1 := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, bus.PublishJSON(ctx, messaging.SubjectRollupDeltas,
		messaging.RollupDelta{SiteID: "site-1", Day: day1, IsBot: true}))
	require.NoError(t, bus.PublishJSON(ctx, messaging.SubjectRollupDeltas,
		messaging.RollupDelta{SiteID: "site-1", Day: day2, IsBot: true}))

	rollups, err := repo.GetDailyRollups(ctx, "site-1", day1, day2.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rollups, 2)
	assert.Equal(t, int64(1), rollups[0].RequestCount)
	assert.Equal(t, int64(1), rollups[1].RequestCount)
}

func TestWorker_DropsMalformedDeltas(t *testing.T) {
	worker, repo, bus := newTestWorker(t)
	defer worker.Stop()
	ctx := context.Background()

	// Undecodable and incomplete payloads are dropped, not retried.
	require.NoError(t, bus.handler(ctx, []byte("not json")))
	require.NoError(t, bus.handler(ctx, []byte(`{"site_id":""}`)))

	rollups, err := repo.GetDailyRollups(ctx, "site-1",
		time.Time{}, time.Now().UTC().AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, rollups)
}

func TestWorker_Stop(t *testing.T) {
	worker, _, bus := newTestWorker(t)
	require.NoError(t, worker.Stop())
	assert.True(t, bus.unsubscribed)
	// Stop is idempotent once unsubscribed.
	assert.NoError(t, worker.Stop())
}

// Package aggregator materializes per-day analytics rollups from the
// delta stream published at ingest time.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/botwall-io/botwall/internal/logging"
	"github.com/botwall-io/botwall/internal/messaging"
	"github.com/botwall-io/botwall/internal/metrics"
	"github.com/botwall-io/botwall/internal/models"
	"github.com/botwall-io/botwall/internal/repository"
)

// applyTimeout bounds the storage write for a single delta.
const applyTimeout = 5 * time.Second

// Worker folds rollup deltas into daily_rollups. Workers in the same
// queue group share the stream, so running several instances scales
// horizontally without double counting.
type Worker struct {
	repo        repository.Repository
	subscriber  messaging.Subscriber
	logger      *logging.Logger
	unsubscribe func() error
}

func NewWorker(repo repository.Repository, subscriber messaging.Subscriber, logger *logging.Logger) *Worker {
	return &Worker{
		repo:       repo,
		subscriber: subscriber,
		logger:     logger,
	}
}

// Start subscribes to the delta stream. It returns once the
// subscription is established; deltas are applied on the bus's
// delivery goroutines.
func (w *Worker) Start() error {
	unsub, err := w.subscriber.QueueSubscribe(
		messaging.SubjectRollupDeltas,
		messaging.QueueRollupWorkers,
		w.handle,
	)
	if err != nil {
		return fmt.Errorf("rollup subscription failed: %w", err)
	}
	w.unsubscribe = unsub

	w.logger.InfoContext(context.Background(), "rollup worker started",
		"subject", messaging.SubjectRollupDeltas,
		"queue", messaging.QueueRollupWorkers,
	)
	return nil
}

// Stop drains the subscription. Deltas published while the worker is
// down stay on the bus per its retention; the raw event log remains
// complete either way.
func (w *Worker) Stop() error {
	if w.unsubscribe == nil {
		return nil
	}
	return w.unsubscribe()
}

func (w *Worker) handle(ctx context.Context, data []byte) error {
	var delta messaging.RollupDelta
	if err := json.Unmarshal(data, &delta); err != nil {
		metrics.RollupErrors.Inc()
		w.logger.WarnContext(ctx, "dropping undecodable rollup delta", logging.Error(err))
		// Malformed payloads never become decodable; do not retry.
		return nil
	}
	if delta.SiteID == "" || delta.Day.IsZero() {
		metrics.RollupErrors.Inc()
		w.logger.WarnContext(ctx, "dropping incomplete rollup delta", logging.SiteID(delta.SiteID))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	if err := w.Apply(ctx, &delta); err != nil {
		metrics.RollupErrors.Inc()
		w.logger.ErrorContext(ctx, "rollup apply failed",
			logging.SiteID(delta.SiteID),
			logging.Error(err),
		)
		return err
	}
	return nil
}

// Apply folds one delta into its site's rollup row for the day.
func (w *Worker) Apply(ctx context.Context, delta *messaging.RollupDelta) error {
	rollup := &models.DailyRollup{
		SiteID:           delta.SiteID,
		Day:              delta.Day.UTC().Truncate(24 * time.Hour),
		RequestCount:     1,
		EstimatedRevenue: delta.Revenue,
	}
	if delta.IsBot {
		rollup.BotCount = 1
	}

	if err := w.repo.UpsertDailyRollup(ctx, rollup); err != nil {
		return err
	}
	metrics.RollupsApplied.Inc()
	return nil
}

// Package messaging decouples event ingestion from rollup
// materialization through a message bus.
package messaging

import (
	"context"
	"time"
)

// Subject constants for the botwall message bus.
const (
	// SubjectRollupDeltas carries one delta per accepted event for the
	// rollup worker to fold into daily_rollups.
	SubjectRollupDeltas = "analytics.rollups.delta"
)

// QueueRollupWorkers is the queue group for rollup workers; deltas are
// load-balanced so each is applied exactly once per group.
const QueueRollupWorkers = "rollup-workers"

// RollupDelta is one accepted event's contribution to its site's daily
// rollup. Counts only increase, so replaying a delta after a worker
// crash at worst overcounts; it never walks a rollup backwards.
type RollupDelta struct {
	SiteID  string    `json:"site_id"`
	Day     time.Time `json:"day"` // UTC midnight of the event's day
	IsBot   bool      `json:"is_bot"`
	Revenue float64   `json:"revenue"`
}

// Handler processes one received message. Returning an error marks the
// message as failed for the implementation's retry semantics.
type Handler func(ctx context.Context, data []byte) error

// Publisher publishes messages to subjects.
type Publisher interface {
	PublishJSON(ctx context.Context, subject string, v interface{}) error
	Close() error
}

// Subscriber consumes messages from subjects.
type Subscriber interface {
	QueueSubscribe(subject, queue string, handler Handler) (func() error, error)
	Close() error
}

// Bus combines publishing and subscribing.
type Bus interface {
	Publisher
	Subscriber
}

// NoOpPublisher drops every message. Used when the bus is disabled;
// summaries are then computed from the raw log only.
type NoOpPublisher struct{}

func (NoOpPublisher) PublishJSON(ctx context.Context, subject string, v interface{}) error {
	return nil
}

func (NoOpPublisher) Close() error { return nil }

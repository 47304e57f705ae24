package worker

import (
	"context"
	"log/slog"
	"time"

	"cascade/internal/history/metrics"
	"cascade/internal/history/models"
)

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

type OutboxStore interface {
	ListUnpublished(ctx context.Context, limit int) ([]*models.OutboxRow, error)
	MarkPublished(ctx context.Context, rowID int64, now time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Worker drains the history outbox into Kafka. Rows are published oldest
// first and marked only after the broker acknowledges, so delivery is
// at-least-once; consumers must dedupe on entry ID. Keying by project ID
// keeps entries for one project on one partition, preserving their order.
type Worker struct {
	store     OutboxStore
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(w *Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func New(store OutboxStore, publisher Publisher, opts ...Option) *Worker {
	w := &Worker{
		store:     store,
		publisher: publisher,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the outbox on a fixed interval until ctx is cancelled. A failed
// publish stops the current batch; the row stays unpublished and is retried
// on the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.Error("history outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	rows, err := w.store.ListUnpublished(ctx, w.batchSize)
	if err != nil {
		return err
	}

	for _, row := range rows {
		start := time.Now()
		if err := w.publisher.Publish(ctx, row.ProjectID.String(), row.Payload); err != nil {
			w.metrics.IncrementPublishFailed()
			return err
		}
		w.metrics.ObservePublishLatency(time.Since(start))

		if err := w.store.MarkPublished(ctx, row.ID, time.Now()); err != nil {
			return err
		}
		w.metrics.IncrementPublished()
	}
	return nil
}

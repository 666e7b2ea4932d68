package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

// WorkerConfig tunes the outbox publish loop. Zero values fall back to
// defaults suited to the low-volume exam event stream.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	ClaimTTL     time.Duration
	MaxRetries   int
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.ClaimTTL <= 0 {
		c.ClaimTTL = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	return c
}

// OutboxWorker drains the exam_outbox table and hands events to the
// publisher. Claims use a per-iteration token so concurrent workers never
// publish the same record twice; records that exhaust their retries are
// dead-lettered in place.
type OutboxWorker struct {
	logger    *slog.Logger
	outbox    ports.OutboxRepository
	publisher ports.EventPublisher
	cfg       WorkerConfig
}

func NewOutboxWorker(logger *slog.Logger, outbox ports.OutboxRepository, publisher ports.EventPublisher, cfg WorkerConfig) *OutboxWorker {
	return &OutboxWorker{
		logger: logger.With(
			"module", "events",
			"layer", "adapter",
		),
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg.withDefaults(),
	}
}

// Run loops until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "outbox iteration failed",
				"operation", "outbox_process_once",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *OutboxWorker) processOnce(ctx context.Context) error {
	claimToken := uuid.NewString()
	claimUntil := time.Now().UTC().Add(w.cfg.ClaimTTL)
	records, err := w.outbox.ClaimUnpublished(ctx, w.cfg.BatchSize, claimToken, claimUntil)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, rec := range records {
		if rec.RetryCount >= w.cfg.MaxRetries {
			_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, "retry threshold reached before publish", now)
			continue
		}

		err := w.publisher.Publish(ctx, rec.EventType, rec.Payload, rec.PartitionKey)
		if err == nil {
			if markErr := w.outbox.MarkPublished(ctx, rec.OutboxID, claimToken, now); markErr != nil {
				w.logger.WarnContext(ctx, "mark published failed",
					"operation", "mark_published",
					"outcome", "failure",
					"outbox_id", rec.OutboxID,
					"error", markErr,
				)
			}
			continue
		}

		retries := rec.RetryCount + 1
		if retries >= w.cfg.MaxRetries {
			w.logger.ErrorContext(ctx, "outbox event dead-lettered",
				"operation", "publish_event",
				"outcome", "failure",
				"outbox_id", rec.OutboxID,
				"event_type", rec.EventType,
				"retry_count", retries,
				"error", err,
			)
			_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, err.Error(), now)
			continue
		}
		w.logger.WarnContext(ctx, "outbox publish failed; retry scheduled",
			"operation", "publish_event",
			"outcome", "failure",
			"outbox_id", rec.OutboxID,
			"event_type", rec.EventType,
			"retry_count", retries,
			"error", err,
		)
		_ = w.outbox.MarkFailed(ctx, rec.OutboxID, claimToken, err.Error(), now)
	}
	return nil
}

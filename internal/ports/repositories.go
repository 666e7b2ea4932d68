package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
)

// CreateUserParams captures atomic user-creation inputs.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	CreatedAtUTC time.Time
}

// UserRepository defines persistence operations for student identities.
// The transactional create method exists to enforce user+outbox consistency.
type UserRepository interface {
	CreateWithOutboxTx(ctx context.Context, params CreateUserParams, outboxEvent OutboxEvent) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// ChapterRepository manages chapter content. Upsert and delete write an
// outbox event in the same transaction so downstream consumers see every
// content change exactly once.
type ChapterRepository interface {
	UpsertWithOutboxTx(ctx context.Context, chapter domain.Chapter, outboxEvent OutboxEvent) (domain.Chapter, error)
	GetByNumber(ctx context.Context, number int) (domain.Chapter, error)
	List(ctx context.Context) ([]domain.Chapter, error)
	DeleteWithOutboxTx(ctx context.Context, number int, outboxEvent OutboxEvent) error
}

// OutboxEvent is the write-side event payload prior to storage.
// It is adapter-neutral to keep application code independent of broker specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	LastError    *string
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

// OutboxRepository controls publish-retry workflow for domain events.
// This explicit contract enables transactional outbox patterns without leaking DB details.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}

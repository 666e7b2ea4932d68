package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

// VerifyAccess decides whether the bearer of token may open chapter.
// A missing token is the demo case: only chapter 1 is readable. A present
// token must resolve in the token store; any known token grants every
// chapter. The result is computed fresh on each call.
func (s *Service) VerifyAccess(ctx context.Context, token *string, chapter int) (domain.Verification, error) {
	if token == nil || strings.TrimSpace(*token) == "" {
		return domain.Verification{
			Valid: chapter == domain.DemoChapter,
			Mode:  domain.ModeDemo,
		}, nil
	}

	username, found, err := s.tokens.Lookup(ctx, strings.TrimSpace(*token))
	if err != nil {
		return domain.Verification{}, fmt.Errorf("lookup token: %w", err)
	}
	if !found {
		return domain.Verification{Valid: false, Mode: domain.ModeInvalid}, nil
	}
	return domain.Verification{
		Valid:    true,
		Mode:     domain.ModeFull,
		Username: username,
	}, nil
}

// Login checks the credentials and issues a fresh opaque token with the
// configured TTL. A login replaces nothing: earlier tokens stay valid until
// they expire, matching the one-token-per-login issuance model.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return LoginResult{}, domain.ErrInvalidInput
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResult{}, domain.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.tokens.Put(ctx, token, user.Username, s.cfg.TokenTTL); err != nil {
		return LoginResult{}, fmt.Errorf("store token: %w", err)
	}

	s.enqueueEvent(ctx, "user.logged_in", user.Username, map[string]any{
		"username":  user.Username,
		"logged_at": s.nowFn().Format(time.RFC3339),
	})

	return LoginResult{Token: token, Username: user.Username}, nil
}

// enqueueEvent writes a domain event to the outbox. Delivery is best effort
// from the caller's point of view: a full outbox must not fail the user
// operation, so failures are only logged.
func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(`{}`)
	}
	event := ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      raw,
		OccurredAt:   s.nowFn(),
	}
	if err := s.outbox.Enqueue(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "outbox enqueue failed",
			"operation", "enqueue_event",
			"outcome", "failure",
			"event_type", eventType,
			"error", err,
		)
	}
}

func (s *Service) newOutboxEvent(eventType, partitionKey string, payload map[string]any) ports.OutboxEvent {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(`{}`)
	}
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      raw,
		OccurredAt:   s.nowFn(),
	}
}

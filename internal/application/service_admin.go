package application

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

// AdminLogin validates the operator credentials and issues a short-lived
// admin token. Credentials come from configuration only; an unconfigured
// deployment has no admin surface at all.
func (s *Service) AdminLogin(ctx context.Context, req AdminLoginRequest) (AdminLoginResult, error) {
	if s.cfg.AdminUsername == "" || s.cfg.AdminPassword == "" {
		return AdminLoginResult{}, domain.ErrUnauthorized
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		return AdminLoginResult{}, domain.ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.adminTokens.Put(ctx, token, s.cfg.AdminTokenTTL); err != nil {
		return AdminLoginResult{}, fmt.Errorf("store admin token: %w", err)
	}
	return AdminLoginResult{AdminToken: token}, nil
}

// CheckAdminToken reports whether token is a live admin session.
func (s *Service) CheckAdminToken(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	return s.adminTokens.Validate(ctx, token)
}

// AddUser enrolls a student with a bcrypt-hashed password. The user row and
// its created event commit in one transaction.
func (s *Service) AddUser(ctx context.Context, req AddUserRequest) (domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return domain.User{}, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	event := s.newOutboxEvent("user.created", username, map[string]any{
		"username":   username,
		"created_at": now.Format(time.RFC3339),
	})
	user, err := s.users.CreateWithOutboxTx(ctx, ports.CreateUserParams{
		Username:     username,
		PasswordHash: hash,
		CreatedAtUTC: now,
	}, event)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UpsertChapter creates or replaces a chapter and records the content
// change event transactionally.
func (s *Service) UpsertChapter(ctx context.Context, req UpsertChapterRequest) (domain.Chapter, error) {
	chapter := domain.Chapter{
		Number:    req.Number,
		Name:      strings.TrimSpace(req.Name),
		Questions: req.Questions,
		UpdatedAt: s.nowFn(),
	}
	if err := chapter.Validate(); err != nil {
		return domain.Chapter{}, err
	}

	event := s.newOutboxEvent("chapter.updated", strconv.Itoa(chapter.Number), map[string]any{
		"chapter":        chapter.Number,
		"name":           chapter.Name,
		"question_count": len(chapter.Questions),
	})
	return s.chapters.UpsertWithOutboxTx(ctx, chapter, event)
}

// DeleteChapter removes a chapter and records the deletion event.
func (s *Service) DeleteChapter(ctx context.Context, number int) error {
	if number < 1 {
		return domain.ErrInvalidInput
	}
	event := s.newOutboxEvent("chapter.deleted", strconv.Itoa(number), map[string]any{
		"chapter": number,
	})
	return s.chapters.DeleteWithOutboxTx(ctx, number, event)
}

// ListChapters returns all chapters including their questions.
func (s *Service) ListChapters(ctx context.Context) ([]domain.Chapter, error) {
	return s.chapters.List(ctx)
}

package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

type Repositories struct {
	Users    ports.UserRepository
	Chapters ports.ChapterRepository
	Outbox   ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    &userRepository{db: db},
		Chapters: &chapterRepository{db: db},
		Outbox:   &outboxRepository{db: db},
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

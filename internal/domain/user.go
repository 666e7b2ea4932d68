package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an enrolled student identity. Authentication is a plain
// username/password pair; issued tokens live in the token store, not here.
type User struct {
	UserID       uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

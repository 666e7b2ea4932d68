package application

import (
	"time"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
)

// Config carries the tunables the service needs at call time.
type Config struct {
	// AdminUsername/AdminPassword are the operator credentials. Both must
	// be configured for admin login to be possible; there are no defaults.
	AdminUsername string
	AdminPassword string

	TokenTTL      time.Duration
	AdminTokenTTL time.Duration
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminLoginResult struct {
	AdminToken string `json:"admin_token"`
}

type AddUserRequest struct {
	Username string `json:"user"`
	Password string `json:"pass"`
}

type UpsertChapterRequest struct {
	Number    int               `json:"chapter_id"`
	Name      string            `json:"name"`
	Questions []domain.Question `json:"questions"`
}

type CheckAnswerRequest struct {
	Answer  string `json:"answer"`
	Chapter int    `json:"chapter"`
}

// CheckAnswerResult mirrors the evaluation contract: a rendered report plus
// a status that is "success" for a completed evaluation and "processing"
// when marking degraded to the pending template.
type CheckAnswerResult struct {
	Result    string `json:"result"`
	Status    string `json:"status"`
	Chapter   int    `json:"chapter"`
	Timestamp string `json:"timestamp"`
}

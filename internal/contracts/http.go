// Package contracts pins the wire shapes of the public HTTP API.
// The verify and login payloads are flat (no envelope) because deployed
// clients consume them at the top level.
package contracts

import "github.com/daniiyalw/ai-icap-exam/internal/domain"

// VerifyRequest is the chapter access check. A null token selects demo mode.
type VerifyRequest struct {
	Token   *string `json:"token"`
	Chapter int     `json:"chapter"`
}

// VerifyResponse is intentionally flat: clients read the valid field
// directly from the response root.
type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	Mode     string `json:"mode"`
	Username string `json:"username,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type AdminLoginResponse struct {
	Success    bool   `json:"success"`
	AdminToken string `json:"admin_token,omitempty"`
	Message    string `json:"message,omitempty"`
}

type AdminTokenCheckResponse struct {
	TokenProvided bool   `json:"token_provided"`
	TokenValid    bool   `json:"token_valid"`
	Message       string `json:"message"`
}

type ChapterPayload struct {
	Number    int               `json:"chapter"`
	Name      string            `json:"name"`
	Questions []domain.Question `json:"questions"`
}

func ToChapterPayload(chapter domain.Chapter) ChapterPayload {
	questions := chapter.Questions
	if questions == nil {
		questions = []domain.Question{}
	}
	return ChapterPayload{
		Number:    chapter.Number,
		Name:      chapter.Name,
		Questions: questions,
	}
}

type UpsertChapterRequest struct {
	Number    int               `json:"chapter_id"`
	Name      string            `json:"name"`
	Questions []domain.Question `json:"questions"`
}

type AddUserRequest struct {
	Username string `json:"user"`
	Password string `json:"pass"`
}

type CheckAnswerRequest struct {
	Answer  string `json:"answer"`
	Chapter int    `json:"chapter"`
}

type CheckAnswerResponse struct {
	Result    string `json:"result"`
	Status    string `json:"status"`
	Chapter   int    `json:"chapter"`
	Timestamp string `json:"timestamp"`
}

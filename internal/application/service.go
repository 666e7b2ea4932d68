package application

import (
	"log/slog"
	"time"

	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

// Service implements the exam platform use-cases: chapter access
// verification, login/token issuance, chapter content administration and
// answer evaluation. Adapters stay behind ports so the service is testable
// with in-memory fakes.
type Service struct {
	cfg         Config
	users       ports.UserRepository
	chapters    ports.ChapterRepository
	outbox      ports.OutboxRepository
	tokens      ports.TokenStore
	adminTokens ports.AdminTokenStore
	hasher      ports.PasswordHasher
	evaluator   ports.AnswerEvaluator
	fallback    ports.AnswerEvaluator
	logger      *slog.Logger
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Users       ports.UserRepository
	Chapters    ports.ChapterRepository
	Outbox      ports.OutboxRepository
	Tokens      ports.TokenStore
	AdminTokens ports.AdminTokenStore
	Hasher      ports.PasswordHasher
	// Evaluator is the preferred answer evaluator, usually the remote
	// model client. It may be nil when no API key is configured.
	Evaluator ports.AnswerEvaluator
	// Fallback is the local rules evaluator used when Evaluator is nil
	// or fails. It must not be nil.
	Fallback ports.AnswerEvaluator
	Logger   *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:         deps.Config,
		users:       deps.Users,
		chapters:    deps.Chapters,
		outbox:      deps.Outbox,
		tokens:      deps.Tokens,
		adminTokens: deps.AdminTokens,
		hasher:      deps.Hasher,
		evaluator:   deps.Evaluator,
		fallback:    deps.Fallback,
		logger: logger.With(
			"module", "application",
			"layer", "service",
		),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock. Test hook.
func (s *Service) WithNow(nowFn func() time.Time) *Service {
	s.nowFn = nowFn
	return s
}

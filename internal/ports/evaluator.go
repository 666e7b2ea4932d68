package ports

import (
	"context"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
)

// EvaluateInput is one submitted answer awaiting marking.
type EvaluateInput struct {
	Chapter      int
	ChapterTopic string
	Answer       string
}

// AnswerEvaluator marks a submitted answer against the chapter topic.
// Implementations may call a remote model; failures surface as errors so
// the application can fall back to the local rules engine.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, input EvaluateInput) (domain.Evaluation, error)
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

// GetChapter returns one chapter with its questions.
func (s *Service) GetChapter(ctx context.Context, number int) (domain.Chapter, error) {
	if number < 1 {
		return domain.Chapter{}, domain.ErrInvalidInput
	}
	return s.chapters.GetByNumber(ctx, number)
}

// CheckAnswer marks a submitted answer. The remote evaluator is preferred
// when configured; on any evaluator failure the local rules engine takes
// over, and if that fails too the caller still gets a pending-style report.
// Marking never returns an error for evaluator trouble: the worst outcome
// is a deferred evaluation, mirroring the access-check failure policy.
func (s *Service) CheckAnswer(ctx context.Context, req CheckAnswerRequest) (CheckAnswerResult, error) {
	if strings.TrimSpace(req.Answer) == "" {
		return CheckAnswerResult{}, domain.ErrInvalidInput
	}
	chapter := req.Chapter
	if chapter < 1 {
		chapter = domain.DemoChapter
	}

	input := ports.EvaluateInput{
		Chapter:      chapter,
		ChapterTopic: s.chapterTopic(ctx, chapter),
		Answer:       req.Answer,
	}

	evaluation, err := s.evaluate(ctx, input)
	if err != nil {
		s.logger.WarnContext(ctx, "answer evaluation degraded",
			"operation", "check_answer",
			"outcome", "degraded",
			"chapter", chapter,
			"error", err,
		)
		return CheckAnswerResult{
			Result:    pendingReport(),
			Status:    "processing",
			Chapter:   chapter,
			Timestamp: s.nowFn().Format("2006-01-02 15:04:05"),
		}, nil
	}

	return CheckAnswerResult{
		Result:    renderReport(chapter, evaluation),
		Status:    "success",
		Chapter:   chapter,
		Timestamp: s.nowFn().Format("2006-01-02 15:04:05"),
	}, nil
}

func (s *Service) evaluate(ctx context.Context, input ports.EvaluateInput) (domain.Evaluation, error) {
	if s.evaluator != nil {
		evaluation, err := s.evaluator.Evaluate(ctx, input)
		if err == nil {
			return evaluation, nil
		}
		s.logger.WarnContext(ctx, "remote evaluator failed; falling back to rules",
			"operation", "evaluate_answer",
			"outcome", "failure",
			"chapter", input.Chapter,
			"error", err,
		)
	}
	if s.fallback == nil {
		return domain.Evaluation{}, errors.New("no evaluator available")
	}
	return s.fallback.Evaluate(ctx, input)
}

// chapterTopic resolves the chapter name for evaluator context. A missing
// chapter is not fatal; marking proceeds with the generic subject.
func (s *Service) chapterTopic(ctx context.Context, number int) string {
	chapter, err := s.chapters.GetByNumber(ctx, number)
	if err != nil {
		return "Business Law"
	}
	return chapter.Name
}

func renderReport(chapter int, e domain.Evaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ICAP AI EXAMINER - CHAPTER %d\n\n", chapter)
	fmt.Fprintf(&b, "FINAL SCORE: %d/%d\n", e.Score, e.MaxScore)
	if e.Relevance != "" {
		fmt.Fprintf(&b, "RELEVANCE: %s\n", e.Relevance)
	}
	if e.Strengths != "" {
		fmt.Fprintf(&b, "\nSTRENGTHS:\n%s\n", e.Strengths)
	}
	if e.Weaknesses != "" {
		fmt.Fprintf(&b, "\nAREAS TO IMPROVE:\n%s\n", e.Weaknesses)
	}
	if e.Feedback != "" {
		fmt.Fprintf(&b, "\nDETAILED FEEDBACK:\n%s\n", e.Feedback)
	}
	if e.ModelAnswer != "" {
		fmt.Fprintf(&b, "\nMODEL ANSWER SNIPPET:\n%s\n", e.ModelAnswer)
	}
	return b.String()
}

func pendingReport() string {
	return strings.Join([]string{
		"Answer submitted successfully.",
		"",
		"Evaluation: pending analysis.",
		"",
		"Quick tips:",
		"1. Ensure the answer matches the question topic",
		"2. Use legal terminology for law questions",
		"3. Reference Contract Act 1872 sections",
		"4. Include case law examples",
	}, "\n")
}

// Package evaluator provides answer-marking adapters: a deterministic local
// rules engine and an optional remote generative-model client.
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

const maxScore = 10

var offTopicTerms = []string{"mitochondria", "cell", "biology", "science", "physics", "computer"}

var legalTerms = []string{"legal", "law", "contract", "act", "section", "court", "judge"}

// RulesEvaluator marks answers with keyword and length heuristics.
// It never fails, which makes it the terminal fallback in the marking chain.
type RulesEvaluator struct{}

func NewRulesEvaluator() *RulesEvaluator { return &RulesEvaluator{} }

func (e *RulesEvaluator) Evaluate(_ context.Context, input ports.EvaluateInput) (domain.Evaluation, error) {
	lower := strings.ToLower(input.Answer)

	offTopic := containsAny(lower, offTopicTerms)
	onTopic := containsAny(lower, legalTerms)
	if offTopic && !onTopic {
		return domain.Evaluation{
			Score:       1,
			MaxScore:    maxScore,
			Relevance:   "Completely wrong topic",
			Strengths:   "None - off-topic",
			Weaknesses:  "Wrong subject, no legal content",
			Feedback:    "The answer discusses a science topic but the question is about " + input.ChapterTopic + ". This earns almost no marks.",
			ModelAnswer: "Legal concepts only - no science topics.",
		}, nil
	}

	wordCount := len(strings.Fields(input.Answer))
	paragraphs := strings.Count(input.Answer, "\n\n") + 1
	legalHits := countAny(lower, legalTerms)

	score := 3 + wordCount/50 + min(paragraphs, 3)
	if legalHits > 0 {
		score++
	}
	if score > 9 {
		score = 9
	}

	return domain.Evaluation{
		Score:       score,
		MaxScore:    maxScore,
		Relevance:   "On topic",
		Strengths:   fmt.Sprintf("%d words, basic structure, %d legal terms used", wordCount, legalHits),
		Weaknesses:  "Needs legal citations and case references",
		Feedback:    "Add specific laws, case examples, legal principles and a proper conclusion relevant to " + input.ChapterTopic + ".",
		ModelAnswer: "Refer to the ICAP study materials for model answers.",
	}, nil
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func countAny(s string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(s, term) {
			n++
		}
	}
	return n
}

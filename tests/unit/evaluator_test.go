package unit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/daniiyalw/ai-icap-exam/internal/adapters/evaluator"
	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

func TestRulesEvaluatorOffTopicAnswer(t *testing.T) {
	t.Parallel()

	rules := evaluator.NewRulesEvaluator()
	result, err := rules.Evaluate(context.Background(), ports.EvaluateInput{
		Chapter:      2,
		ChapterTopic: "Contract Act",
		Answer:       "The mitochondria is the powerhouse of the cell, as every biology student knows.",
	})
	if err != nil {
		t.Fatalf("rules evaluator should not fail: %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("expected score 1 for off-topic answer, got %d", result.Score)
	}
	if result.Relevance != "Completely wrong topic" {
		t.Fatalf("unexpected relevance: %q", result.Relevance)
	}
}

func TestRulesEvaluatorOnTopicScoring(t *testing.T) {
	t.Parallel()

	rules := evaluator.NewRulesEvaluator()
	short, err := rules.Evaluate(context.Background(), ports.EvaluateInput{
		Chapter:      2,
		ChapterTopic: "Contract Act",
		Answer:       "A contract needs offer and acceptance under the act.",
	})
	if err != nil {
		t.Fatalf("rules evaluator should not fail: %v", err)
	}
	// 3 base + 0 length + 1 paragraph + 1 legal-term bonus.
	if short.Score != 5 {
		t.Fatalf("expected score 5 for short on-topic answer, got %d", short.Score)
	}
	if short.MaxScore != 10 {
		t.Fatalf("expected max score 10, got %d", short.MaxScore)
	}

	long, err := rules.Evaluate(context.Background(), ports.EvaluateInput{
		Chapter:      2,
		ChapterTopic: "Contract Act",
		Answer: strings.Repeat("The contract act and the court define legal duties for every section of law. ", 40) +
			"\n\nSecond paragraph.\n\nThird paragraph.\n\nFourth paragraph.",
	})
	if err != nil {
		t.Fatalf("rules evaluator should not fail: %v", err)
	}
	if long.Score != 9 {
		t.Fatalf("expected score capped at 9, got %d", long.Score)
	}
}

func TestGenerativeEvaluatorRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := evaluator.NewGenerativeEvaluator(evaluator.GenerativeConfig{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestGenerativeEvaluatorParsesLabeledReport(t *testing.T) {
	t.Parallel()

	report := strings.Join([]string{
		"SCORE: 7/10",
		"RELEVANCE: Mostly relevant to the Contract Act",
		"STRENGTHS: Names the essential elements of a contract",
		"WEAKNESSES: No case law cited anywhere in the answer",
		"FEEDBACK: Cite sections of the act and at least one decided case.",
		"CORRECT_ANSWER: A valid contract needs offer, acceptance and consideration.",
	}, "\n")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": report}}}},
			},
		})
	}))
	defer server.Close()

	gen, err := evaluator.NewGenerativeEvaluator(evaluator.GenerativeConfig{
		APIKey:   "test-key",
		Endpoint: server.URL,
	})
	if err != nil {
		t.Fatalf("build evaluator: %v", err)
	}

	result, err := gen.Evaluate(context.Background(), ports.EvaluateInput{
		Chapter:      2,
		ChapterTopic: "Contract Act",
		Answer:       "A contract requires offer and acceptance.",
	})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result.Score != 7 {
		t.Fatalf("expected score 7, got %d", result.Score)
	}
	if result.ModelAnswer == "" || result.Feedback == "" {
		t.Fatalf("expected labeled fields populated, got %+v", result)
	}
}

func TestGenerativeEvaluatorRejectsShortReply(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "ok"}}}},
			},
		})
	}))
	defer server.Close()

	gen, err := evaluator.NewGenerativeEvaluator(evaluator.GenerativeConfig{APIKey: "test-key", Endpoint: server.URL})
	if err != nil {
		t.Fatalf("build evaluator: %v", err)
	}
	if _, err := gen.Evaluate(context.Background(), ports.EvaluateInput{Answer: "x"}); err == nil {
		t.Fatalf("expected error for trivially short model reply")
	}
}

func TestGenerativeEvaluatorSurfacesAPIFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	gen, err := evaluator.NewGenerativeEvaluator(evaluator.GenerativeConfig{APIKey: "test-key", Endpoint: server.URL})
	if err != nil {
		t.Fatalf("build evaluator: %v", err)
	}
	if _, err := gen.Evaluate(context.Background(), ports.EvaluateInput{Answer: "x"}); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

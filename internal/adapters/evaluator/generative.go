package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

// DefaultGenerativeEndpoint is the Google generative language API model URL.
const DefaultGenerativeEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// GenerativeConfig carries the remote evaluator knobs.
type GenerativeConfig struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

// GenerativeEvaluator marks answers with a hosted generative model.
// Errors propagate so the application can fall back to the rules engine.
type GenerativeEvaluator struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewGenerativeEvaluator(cfg GenerativeConfig) (*GenerativeEvaluator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("generative evaluator requires an api key")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultGenerativeEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &GenerativeEvaluator{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		httpClient: httpClient,
	}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (e *GenerativeEvaluator) Evaluate(ctx context.Context, input ports.EvaluateInput) (domain.Evaluation, error) {
	answer := input.Answer
	if len(answer) > 1000 {
		answer = answer[:1000]
	}
	prompt := fmt.Sprintf(
		"As an ICAP %s examiner, evaluate strictly. Score 0-10. Reply with labeled lines: SCORE:, RELEVANCE:, STRENGTHS:, WEAKNESSES:, FEEDBACK:, CORRECT_ANSWER:.\n\nAnswer: %s",
		input.ChapterTopic, answer,
	)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.2,
			MaxOutputTokens: 500,
		},
	})
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"?key="+e.apiKey, bytes.NewReader(body))
	if err != nil {
		return domain.Evaluation{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return domain.Evaluation{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Evaluation{}, fmt.Errorf("generative api failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Evaluation{}, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return domain.Evaluation{}, fmt.Errorf("empty model response")
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if len(strings.TrimSpace(text)) < 50 {
		return domain.Evaluation{}, fmt.Errorf("model response too short to be a marking report")
	}
	return parseModelReport(text), nil
}

// parseModelReport extracts the labeled lines of the model's reply.
// Unlabeled lines fold into feedback so nothing the model said is dropped.
func parseModelReport(text string) domain.Evaluation {
	evaluation := domain.Evaluation{MaxScore: maxScore}
	var extra []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SCORE:"):
			evaluation.Score = parseScore(strings.TrimSpace(strings.TrimPrefix(line, "SCORE:")))
		case strings.HasPrefix(line, "RELEVANCE:"):
			evaluation.Relevance = strings.TrimSpace(strings.TrimPrefix(line, "RELEVANCE:"))
		case strings.HasPrefix(line, "STRENGTHS:"):
			evaluation.Strengths = strings.TrimSpace(strings.TrimPrefix(line, "STRENGTHS:"))
		case strings.HasPrefix(line, "WEAKNESSES:"):
			evaluation.Weaknesses = strings.TrimSpace(strings.TrimPrefix(line, "WEAKNESSES:"))
		case strings.HasPrefix(line, "FEEDBACK:"):
			evaluation.Feedback = strings.TrimSpace(strings.TrimPrefix(line, "FEEDBACK:"))
		case strings.HasPrefix(line, "CORRECT_ANSWER:"):
			evaluation.ModelAnswer = strings.TrimSpace(strings.TrimPrefix(line, "CORRECT_ANSWER:"))
		case line != "":
			extra = append(extra, line)
		}
	}
	if evaluation.Feedback == "" && len(extra) > 0 {
		evaluation.Feedback = strings.Join(extra, "\n")
	}
	return evaluation
}

// parseScore reads forms like "7/10", "7 / 10" or a bare "7".
func parseScore(raw string) int {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "/"); idx > 0 {
		raw = strings.TrimSpace(raw[:idx])
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	if n > maxScore {
		return maxScore
	}
	return n
}

package domain

// Evaluation is the structured verdict on one submitted answer.
// MaxScore is fixed at 10 by the marking scheme.
type Evaluation struct {
	Score       int
	MaxScore    int
	Relevance   string
	Strengths   string
	Weaknesses  string
	Feedback    string
	ModelAnswer string
}

package domain

import "time"

// Question is one exam question inside a chapter.
type Question struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Marks int    `json:"marks"`
}

// Chapter is a unit of course content. Identity is the chapter number,
// which is also what access verification is keyed on.
type Chapter struct {
	Number    int
	Name      string
	Questions []Question
	UpdatedAt time.Time
}

// Validate checks the invariants an upserted chapter must satisfy.
func (c Chapter) Validate() error {
	if c.Number < 1 {
		return ErrInvalidInput
	}
	if c.Name == "" {
		return ErrInvalidInput
	}
	for _, q := range c.Questions {
		if q.Text == "" {
			return ErrInvalidInput
		}
	}
	return nil
}

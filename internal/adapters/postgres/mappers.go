package postgres

import (
	"encoding/json"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
)

func toDomainUser(rec userModel) domain.User {
	return domain.User{
		UserID:       rec.UserID,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func toDomainChapter(rec chapterModel) (domain.Chapter, error) {
	var questions []domain.Question
	if rec.Questions != "" {
		if err := json.Unmarshal([]byte(rec.Questions), &questions); err != nil {
			return domain.Chapter{}, err
		}
	}
	return domain.Chapter{
		Number:    rec.Number,
		Name:      rec.Name,
		Questions: questions,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func toChapterModel(chapter domain.Chapter) (chapterModel, error) {
	questions := chapter.Questions
	if questions == nil {
		questions = []domain.Question{}
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return chapterModel{}, err
	}
	return chapterModel{
		Number:    chapter.Number,
		Name:      chapter.Name,
		Questions: string(raw),
		UpdatedAt: chapter.UpdatedAt,
	}, nil
}

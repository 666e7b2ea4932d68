package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/daniiyalw/ai-icap-exam/internal/domain"
	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

type chapterRepository struct {
	db *gorm.DB
}

func (r *chapterRepository) UpsertWithOutboxTx(ctx context.Context, chapter domain.Chapter, outboxEvent ports.OutboxEvent) (domain.Chapter, error) {
	rec, err := toChapterModel(chapter)
	if err != nil {
		return domain.Chapter{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "number"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "questions", "updated_at"}),
		}).Create(&rec).Error; err != nil {
			return err
		}
		return tx.Create(&examOutboxModel{
			OutboxID:     outboxEvent.EventID,
			EventType:    outboxEvent.EventType,
			PartitionKey: outboxEvent.PartitionKey,
			Payload:      string(outboxEvent.Payload),
			CreatedAt:    outboxEvent.OccurredAt,
		}).Error
	})
	if err != nil {
		return domain.Chapter{}, err
	}
	return chapter, nil
}

func (r *chapterRepository) GetByNumber(ctx context.Context, number int) (domain.Chapter, error) {
	var rec chapterModel
	if err := r.db.WithContext(ctx).Where("number = ?", number).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Chapter{}, domain.ErrNotFound
		}
		return domain.Chapter{}, err
	}
	return toDomainChapter(rec)
}

func (r *chapterRepository) List(ctx context.Context) ([]domain.Chapter, error) {
	var rows []chapterModel
	if err := r.db.WithContext(ctx).Order("number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	chapters := make([]domain.Chapter, 0, len(rows))
	for _, rec := range rows {
		chapter, err := toDomainChapter(rec)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, chapter)
	}
	return chapters, nil
}

func (r *chapterRepository) DeleteWithOutboxTx(ctx context.Context, number int, outboxEvent ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("number = ?", number).Delete(&chapterModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Create(&examOutboxModel{
			OutboxID:     outboxEvent.EventID,
			EventType:    outboxEvent.EventType,
			PartitionKey: outboxEvent.PartitionKey,
			Payload:      string(outboxEvent.Payload),
			CreatedAt:    outboxEvent.OccurredAt,
		}).Error
	})
}

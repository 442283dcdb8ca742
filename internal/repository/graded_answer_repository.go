package repository

import (
	"context"

	"github.com/lshigami/quizgrader/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const gradedAnswerBatchSize = 100

type GradedAnswerRepository interface {
	BulkCreate(ctx context.Context, tx *gorm.DB, answers []model.GradedAnswer) error
	CountByAttempt(ctx context.Context, attemptID uint) (int64, error)
}

type gradedAnswerRepository struct {
	db *gorm.DB
}

func NewGradedAnswerRepository(db *gorm.DB) GradedAnswerRepository {
	return &gradedAnswerRepository{db: db}
}

func (r *gradedAnswerRepository) BulkCreate(ctx context.Context, tx *gorm.DB, answers []model.GradedAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Omit(clause.Associations).CreateInBatches(answers, gradedAnswerBatchSize).Error
}

func (r *gradedAnswerRepository) CountByAttempt(ctx context.Context, attemptID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GradedAnswer{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}

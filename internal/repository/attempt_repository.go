package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lshigami/quizgrader/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptRepository writes through the transaction handle passed by the
// caller and reads through its own pool handle.
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *model.Attempt) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, finalScore float64, endTime time.Time) error
	FindByID(ctx context.Context, id uint) (*model.Attempt, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*model.Attempt, error)
	FindAllByQuizAndUser(ctx context.Context, quizID uint, userID *uint) ([]model.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *model.Attempt) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(attempt).Error
}

// MarkCompleted performs the single in_progress -> completed transition.
func (r *attemptRepository) MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, finalScore float64, endTime time.Time) error {
	res := tx.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":      model.AttemptCompleted,
			"final_score": finalScore,
			"end_time":    endTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("attempt %d: %w", id, ErrAttemptNotPending)
	}
	return nil
}

func (r *attemptRepository) FindByID(ctx context.Context, id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Quiz").
		Preload("GradedAnswers.Question").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByQuizAndUser(ctx context.Context, quizID uint, userID *uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	query := r.db.WithContext(ctx).Where("quiz_id = ?", quizID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	err := query.Order("start_time DESC").Find(&attempts).Error
	return attempts, err
}

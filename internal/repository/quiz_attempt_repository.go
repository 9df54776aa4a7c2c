package repository

import (
	"context"
	"quiz_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

// Upsert 以 (user_id, quiz_id) 唯一索引为冲突键，单条语句插入或覆盖，
// 返回库中实际保存的记录
func (r *QuizAttemptRepository) Upsert(ctx context.Context, attempt *model.QuizAttempt) (*model.QuizAttempt, error) {
	var saved model.QuizAttempt
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "quiz_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score",
				"total_questions",
				"submitted_answers",
				"submitted_at",
				"updated_at",
			}),
		}).Create(attempt).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND quiz_id = ?", attempt.UserID, attempt.QuizID).First(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *QuizAttemptRepository) FindByUserAndQuiz(ctx context.Context, userID, quizID string) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByQuiz 按得分降序、提交时间升序
func (r *QuizAttemptRepository) ListByQuiz(ctx context.Context, quizID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("score desc").
		Order("submitted_at asc").
		Find(&attempts).Error
	return attempts, err
}

func (r *QuizAttemptRepository) CountByQuiz(ctx context.Context, quizID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

type SubmittedAnswer struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

// QuizAttempt 每个 (用户, 测验) 仅一条记录，重复提交覆盖
// swagger:model QuizAttempt
type QuizAttempt struct {
	Record
	UserID           string                               `gorm:"size:36;not null;uniqueIndex:idx_attempt_user_quiz" json:"userId"`
	QuizID           string                               `gorm:"size:36;not null;uniqueIndex:idx_attempt_user_quiz;index" json:"quizId"`
	Score            int                                  `gorm:"not null;default:0" json:"score"`
	TotalQuestions   int                                  `gorm:"not null;default:0" json:"totalQuestions"`
	SubmittedAnswers datatypes.JSONSlice[SubmittedAnswer] `json:"submittedAnswers"`
	SubmittedAt      time.Time                            `json:"submittedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

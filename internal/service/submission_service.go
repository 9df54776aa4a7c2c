package service

import (
	"context"
	"errors"
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"
	"quiz_backend/pkg/monitoring"
	"quiz_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmissionService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.QuizAttemptRepository

	// now 测试中可替换
	now func() time.Time
}

func NewSubmissionService(quizRepo *repository.QuizRepository, questionRepo *repository.QuestionRepository, attemptRepo *repository.QuizAttemptRepository) *SubmissionService {
	return &SubmissionService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		now:          time.Now,
	}
}

type SubmitQuizReq struct {
	Answers []model.SubmittedAnswer `json:"answers"`
}

// ScoreAnswers 计算得分：未知题目或选项直接跳过，同一题只计第一次作答
func ScoreAnswers(questions []model.Question, answers []model.SubmittedAnswer) int {
	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	answered := make(map[string]struct{}, len(answers))
	score := 0
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		if _, seen := answered[a.QuestionID]; seen {
			continue
		}
		answered[a.QuestionID] = struct{}{}

		opt, ok := q.FindOption(a.OptionID)
		if ok && opt.IsCorrect {
			score++
		}
	}
	return score
}

// SubmitQuiz 评分并按 (用户, 测验) 覆盖写入答题记录
func (s *SubmissionService) SubmitQuiz(ctx context.Context, quizID, userID string, answers []model.SubmittedAnswer) (attempt *model.QuizAttempt, err error) {
	ctx, span := tracing.StartSpan(ctx, "SubmissionService.SubmitQuiz",
		attribute.String("quiz.id", quizID),
		attribute.String("user.id", userID),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if userID == "" {
		return nil, util.ErrUnauthorized
	}
	if len(answers) == 0 {
		return nil, util.ValidationError("Answers are required and should be a non-empty array")
	}
	if len(answers) > util.MaxAnswersPerSubmit {
		return nil, util.ValidationError(fmt.Sprintf("At most %d answers can be submitted", util.MaxAnswersPerSubmit))
	}

	if _, err = findQuiz(ctx, s.QuizRepo, quizID); err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, util.InternalError("Failed to fetch questions", err)
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	total := len(questions)
	score := ScoreAnswers(questions, answers)

	attempt, err = s.AttemptRepo.Upsert(ctx, &model.QuizAttempt{
		UserID:           userID,
		QuizID:           quizID,
		Score:            score,
		TotalQuestions:   total,
		SubmittedAnswers: answers,
		SubmittedAt:      s.now(),
	})
	if err != nil {
		return nil, util.InternalError("Failed to save the quiz attempt", err)
	}

	monitoring.ObserveSubmission(score, total)
	logger.Log.Info("quiz submitted",
		zap.String("quizId", quizID),
		zap.String("userId", userID),
		zap.Int("score", score),
		zap.Int("total", total),
	)
	return attempt, nil
}

func (s *SubmissionService) GetAttempt(ctx context.Context, quizID, userID string) (*model.QuizAttempt, error) {
	if _, err := findQuiz(ctx, s.QuizRepo, quizID); err != nil {
		return nil, err
	}

	attempt, err := s.AttemptRepo.FindByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, util.InternalError("Failed to fetch the quiz attempt", err)
	}
	return attempt, nil
}

func (s *SubmissionService) ListAttempts(ctx context.Context, quizID string) ([]model.QuizAttempt, error) {
	if _, err := findQuiz(ctx, s.QuizRepo, quizID); err != nil {
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, util.InternalError("Failed to fetch quiz attempts", err)
	}
	return attempts, nil
}

package service

import (
	"context"
	"errors"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"
	"quiz_backend/pkg/tracing"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.QuizAttemptRepository
	Cache        QuestionCache
}

func NewQuizService(quizRepo *repository.QuizRepository, questionRepo *repository.QuestionRepository, attemptRepo *repository.QuizAttemptRepository, cache QuestionCache) *QuizService {
	if cache == nil {
		cache = noopQuestionCache{}
	}
	return &QuizService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		Cache:        cache,
	}
}

type CreateQuizReq struct {
	Title string `json:"title"`
}

// QuizDetail 测验及其统计信息
type QuizDetail struct {
	model.Quiz
	QuestionCount int64 `json:"questionCount"`
	AttemptCount  int64 `json:"attemptCount"`
}

func (s *QuizService) CreateQuiz(ctx context.Context, creatorID string, req CreateQuizReq) (*model.Quiz, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.ValidationError("Title is required")
	}

	quiz := &model.Quiz{
		Title:     title,
		CreatedBy: creatorID,
	}
	if err := s.QuizRepo.Create(ctx, quiz); err != nil {
		return nil, util.InternalError("Failed to create the quiz", err)
	}

	logger.Log.Info("quiz created", zap.String("quizId", quiz.ID), zap.String("createdBy", creatorID))
	return quiz, nil
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]model.Quiz, error) {
	quizzes, err := s.QuizRepo.List(ctx)
	if err != nil {
		return nil, util.InternalError("Failed to fetch quizzes", err)
	}
	return quizzes, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (*QuizDetail, error) {
	quiz, err := s.findQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.CountByQuiz(ctx, quizID)
	if err != nil {
		return nil, util.InternalError("Failed to count questions", err)
	}
	attempts, err := s.AttemptRepo.CountByQuiz(ctx, quizID)
	if err != nil {
		return nil, util.InternalError("Failed to count attempts", err)
	}

	return &QuizDetail{Quiz: *quiz, QuestionCount: questions, AttemptCount: attempts}, nil
}

// DeleteQuiz 删除测验及其题目、答题记录；设置了创建者时只有创建者可删除
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID, requesterID string) (quiz *model.Quiz, err error) {
	ctx, span := tracing.StartSpan(ctx, "QuizService.DeleteQuiz", attribute.String("quiz.id", quizID))
	defer func() { tracing.EndSpan(span, err) }()

	quiz, err = s.findQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if quiz.CreatedBy != "" && quiz.CreatedBy != requesterID {
		return nil, util.ErrNotQuizOwner
	}

	if err = s.QuizRepo.DeleteCascade(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, util.InternalError("Failed to delete the quiz", err)
	}

	s.Cache.Invalidate(ctx, quizID)
	logger.Log.Info("quiz deleted", zap.String("quizId", quizID), zap.String("requester", requesterID))
	return quiz, nil
}

func (s *QuizService) findQuiz(ctx context.Context, quizID string) (*model.Quiz, error) {
	return findQuiz(ctx, s.QuizRepo, quizID)
}

// findQuiz 非法ID与记录不存在都视为测验不存在
func findQuiz(ctx context.Context, repo *repository.QuizRepository, quizID string) (*model.Quiz, error) {
	if !util.IsValidID(quizID) {
		return nil, util.ErrQuizNotFound
	}

	quiz, err := repo.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, util.InternalError("Failed to fetch the quiz", err)
	}
	return quiz, nil
}

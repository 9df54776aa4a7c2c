package service

import (
	"context"
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

type QuestionService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	Cache        QuestionCache
}

func NewQuestionService(quizRepo *repository.QuizRepository, questionRepo *repository.QuestionRepository, cache QuestionCache) *QuestionService {
	if cache == nil {
		cache = noopQuestionCache{}
	}
	return &QuestionService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		Cache:        cache,
	}
}

type OptionReq struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionReq struct {
	Text    string      `json:"text"`
	Options []OptionReq `json:"options"`
}

// validateQuestions 返回每道题的校验错误，全部通过时返回空
func validateQuestions(reqs []QuestionReq) []string {
	var errs []string
	for i, q := range reqs {
		prefix := fmt.Sprintf("questions[%d]", i)
		if util.IsBlank(q.Text) {
			errs = append(errs, prefix+": text is required")
		}
		if len(q.Options) < util.MinOptionsPerQuestion {
			errs = append(errs, fmt.Sprintf("%s: at least %d options are required", prefix, util.MinOptionsPerQuestion))
		}

		hasCorrect := false
		for j, opt := range q.Options {
			if util.IsBlank(opt.Text) {
				errs = append(errs, fmt.Sprintf("%s.options[%d]: text is required", prefix, j))
			}
			if opt.IsCorrect {
				hasCorrect = true
			}
		}
		if len(q.Options) > 0 && !hasCorrect {
			errs = append(errs, prefix+": at least one option must be marked correct")
		}
	}
	return errs
}

// ValidateQuestions 不访问数据库的题目校验，批量导入时可在建测验之前调用
func ValidateQuestions(reqs []QuestionReq) error {
	if len(reqs) == 0 {
		return util.ValidationError("Question is required")
	}
	if len(reqs) > util.MaxQuestionsPerRequest {
		return util.ValidationError(fmt.Sprintf("At most %d questions can be added at once", util.MaxQuestionsPerRequest))
	}
	if errs := validateQuestions(reqs); len(errs) > 0 {
		return util.ValidationError("Each question must have text and at least two options", errs...)
	}
	return nil
}

// AddQuestions 校验全部题目后在一个事务内写入，总是返回题目列表
func (s *QuestionService) AddQuestions(ctx context.Context, quizID string, reqs []QuestionReq) ([]model.Question, error) {
	if len(reqs) == 0 {
		return nil, util.ValidationError("Question is required")
	}
	if len(reqs) > util.MaxQuestionsPerRequest {
		return nil, util.ValidationError(fmt.Sprintf("At most %d questions can be added at once", util.MaxQuestionsPerRequest))
	}

	if _, err := findQuiz(ctx, s.QuizRepo, quizID); err != nil {
		return nil, err
	}

	if err := ValidateQuestions(reqs); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(reqs))
	for i, req := range reqs {
		options := make([]model.QuestionOption, 0, len(req.Options))
		for _, opt := range req.Options {
			options = append(options, model.QuestionOption{
				ID:        model.NewID(),
				Text:      strings.TrimSpace(opt.Text),
				IsCorrect: opt.IsCorrect,
			})
		}
		questions = append(questions, model.Question{
			QuizID:   quizID,
			Text:     strings.TrimSpace(req.Text),
			Options:  options,
			Position: i,
		})
	}

	if err := s.QuestionRepo.CreateBatch(ctx, questions); err != nil {
		return nil, util.InternalError("Failed to create question", err)
	}

	s.Cache.Invalidate(ctx, quizID)
	logger.Log.Info("questions added", zap.String("quizId", quizID), zap.Int("count", len(questions)))
	return questions, nil
}

// ListQuestions 返回去除正确性标记的题目；测验不存在与暂无题目分别报错。
// 缓存命中前先确认测验仍存在且题目数一致，迟到的缓存写入不会被返回
func (s *QuestionService) ListQuestions(ctx context.Context, quizID string) ([]model.PublicQuestion, error) {
	if _, err := findQuiz(ctx, s.QuizRepo, quizID); err != nil {
		return nil, err
	}

	if cached, ok := s.Cache.Get(ctx, quizID); ok {
		count, err := s.QuestionRepo.CountByQuiz(ctx, quizID)
		if err != nil {
			return nil, util.InternalError("Failed to fetch questions", err)
		}
		if count > 0 && int64(len(cached)) == count {
			return cached, nil
		}
		s.Cache.Invalidate(ctx, quizID)
	}

	questions, err := s.QuestionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, util.InternalError("Failed to fetch questions", err)
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	public := make([]model.PublicQuestion, 0, len(questions))
	for i := range questions {
		public = append(public, questions[i].Public())
	}

	// 读取期间测验可能已被删除，此时不回写缓存
	exists, err := s.QuizRepo.Exists(ctx, quizID)
	if err != nil {
		return nil, util.InternalError("Failed to fetch the quiz", err)
	}
	if !exists {
		return nil, util.ErrQuizNotFound
	}

	s.Cache.Set(ctx, quizID, public)
	return public, nil
}

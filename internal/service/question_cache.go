package service

import (
	"context"
	"encoding/json"
	"errors"
	"quiz_backend/internal/model"
	"quiz_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// QuestionCache 缓存面向答题者的题目列表（已去除正确性标记）
type QuestionCache interface {
	Get(ctx context.Context, quizID string) ([]model.PublicQuestion, bool)
	Set(ctx context.Context, quizID string, questions []model.PublicQuestion)
	Invalidate(ctx context.Context, quizID string)
}

// NewQuestionCache rdb 为 nil 时返回不缓存的实现
func NewQuestionCache(rdb *redis.Client, ttl time.Duration) QuestionCache {
	if rdb == nil {
		return noopQuestionCache{}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisQuestionCache{rdb: rdb, ttl: ttl}
}

type redisQuestionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func questionCacheKey(quizID string) string {
	return "quiz:questions:" + quizID
}

func (c *redisQuestionCache) Get(ctx context.Context, quizID string) ([]model.PublicQuestion, bool) {
	data, err := c.rdb.Get(ctx, questionCacheKey(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("question cache read failed", zap.String("quizId", quizID), zap.Error(err))
		}
		return nil, false
	}

	var questions []model.PublicQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		logger.Log.Warn("question cache decode failed", zap.String("quizId", quizID), zap.Error(err))
		return nil, false
	}
	return questions, true
}

func (c *redisQuestionCache) Set(ctx context.Context, quizID string, questions []model.PublicQuestion) {
	data, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, questionCacheKey(quizID), data, c.ttl).Err(); err != nil {
		logger.Log.Warn("question cache write failed", zap.String("quizId", quizID), zap.Error(err))
	}
}

func (c *redisQuestionCache) Invalidate(ctx context.Context, quizID string) {
	if err := c.rdb.Del(ctx, questionCacheKey(quizID)).Err(); err != nil {
		logger.Log.Warn("question cache invalidate failed", zap.String("quizId", quizID), zap.Error(err))
	}
}

type noopQuestionCache struct{}

func (noopQuestionCache) Get(context.Context, string) ([]model.PublicQuestion, bool) { return nil, false }
func (noopQuestionCache) Set(context.Context, string, []model.PublicQuestion)       {}
func (noopQuestionCache) Invalidate(context.Context, string)                        {}

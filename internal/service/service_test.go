package service

import (
	"context"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/testutil"
	"sync"
	"testing"

	"gorm.io/gorm"
)

type services struct {
	db         *gorm.DB
	quiz       *QuizService
	question   *QuestionService
	submission *SubmissionService
	auth       *AuthService
	cache      *memoryQuestionCache
}

func newServices(t *testing.T) *services {
	t.Helper()

	db := testutil.NewTestDB(t)
	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewQuizAttemptRepository(db)
	userRepo := repository.NewUserRepository(db)
	cache := newMemoryQuestionCache()

	return &services{
		db:         db,
		quiz:       NewQuizService(quizRepo, questionRepo, attemptRepo, cache),
		question:   NewQuestionService(quizRepo, questionRepo, cache),
		submission: NewSubmissionService(quizRepo, questionRepo, attemptRepo),
		auth:       NewAuthService(userRepo, testutil.NewTestConfig()),
		cache:      cache,
	}
}

// memoryQuestionCache 进程内实现，用于验证缓存读写与失效
type memoryQuestionCache struct {
	mu          sync.Mutex
	items       map[string][]model.PublicQuestion
	invalidated []string
}

func newMemoryQuestionCache() *memoryQuestionCache {
	return &memoryQuestionCache{items: make(map[string][]model.PublicQuestion)}
}

func (c *memoryQuestionCache) Get(_ context.Context, quizID string) ([]model.PublicQuestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.items[quizID]
	return q, ok
}

func (c *memoryQuestionCache) Set(_ context.Context, quizID string, questions []model.PublicQuestion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[quizID] = questions
}

func (c *memoryQuestionCache) Invalidate(_ context.Context, quizID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, quizID)
	c.invalidated = append(c.invalidated, quizID)
}

// Package testutil 为各层测试提供内存 sqlite 数据库和常用数据
package testutil

import (
	"context"
	"fmt"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/pkg/database"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB 每个测试独立的内存库，测试结束自动关闭
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func NewTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: "test"},
		JWT: config.JWTConfig{
			AccessSecret:  "test-access-secret-0123456789abcdef",
			AccessExpire:  15 * time.Minute,
			RefreshSecret: "test-refresh-secret-0123456789abcdef",
			RefreshExpire: 24 * time.Hour,
		},
		Cookie:    config.CookieConfig{Secure: true, SameSite: "lax"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}
}

func CreateUser(t *testing.T, db *gorm.DB, username string, role model.UserRole) *model.User {
	t.Helper()

	user := &model.User{
		FullName:      "Test " + username,
		Email:         username + "@example.com",
		Username:      username,
		Role:          role,
		PlainPassword: "password123",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

func CreateQuiz(t *testing.T, db *gorm.DB, title, createdBy string) *model.Quiz {
	t.Helper()

	quiz := &model.Quiz{Title: title, CreatedBy: createdBy}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

// CreateQuestion 创建题目，correct 为正确选项下标
func CreateQuestion(t *testing.T, db *gorm.DB, quizID, text string, correct int, options ...string) *model.Question {
	t.Helper()

	opts := make([]model.QuestionOption, 0, len(options))
	for i, o := range options {
		opts = append(opts, model.QuestionOption{
			ID:        model.NewID(),
			Text:      o,
			IsCorrect: i == correct,
		})
	}

	q := &model.Question{QuizID: quizID, Text: text, Options: opts}
	require.NoError(t, db.Create(q).Error)
	return q
}

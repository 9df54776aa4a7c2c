package database

import (
	"context"
	"errors"
	"fmt"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logLevel := gormlogger.Warn
	if mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established")
	return db, nil
}

// Migrate 自动迁移全部表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizAttempt{},
	)
}

// EnsureAdmin 配置了管理员账号且库中不存在时创建
func EnsureAdmin(ctx context.Context, db *gorm.DB, cfg config.AdminConfig) error {
	username := model.NormalizeIdentity(cfg.Username)
	email := model.NormalizeIdentity(cfg.Email)
	if username == "" || email == "" || cfg.Password == "" {
		return nil
	}

	var existing model.User
	err := db.WithContext(ctx).Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		if !existing.IsAdmin() {
			logger.Log.Warn("Configured admin account exists without admin role", zap.String("username", existing.Username))
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	fullName := cfg.FullName
	if fullName == "" {
		fullName = "Administrator"
	}

	admin := &model.User{
		FullName:      fullName,
		Email:         email,
		Username:      username,
		Role:          model.RoleAdmin,
		PlainPassword: cfg.Password,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}

	logger.Log.Info("Admin account created", zap.String("username", admin.Username))
	return nil
}

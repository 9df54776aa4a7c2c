package util

import (
	"errors"
	"fmt"
	"net/http"
	"quiz_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppError 携带 HTTP 状态码的业务错误
type AppError struct {
	StatusCode int
	Message    string
	Errors     []string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, message string, errs ...string) *AppError {
	return &AppError{StatusCode: code, Message: message, Errors: errs}
}

func ValidationError(message string, errs ...string) *AppError {
	return NewAppError(http.StatusBadRequest, message, errs...)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func NotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func ConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message)
}

// InternalError 包装底层错误，响应中只返回通用信息
func InternalError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

var (
	ErrQuizNotFound        = NotFoundError("Quiz not found")
	ErrNoQuestions         = NotFoundError("No questions found for this quiz")
	ErrAttemptNotFound     = NotFoundError("Quiz attempt not found")
	ErrUserNotFound        = NotFoundError("User does not exist")
	ErrUsernameTaken       = ConflictError("User with this username already exists")
	ErrEmailTaken          = ConflictError("User with this email already exists")
	ErrInvalidCredentials  = UnauthorizedError("Invalid user credentials")
	ErrUnauthorized        = UnauthorizedError("Unauthorized request")
	ErrInvalidRefreshToken = UnauthorizedError("Invalid refresh token")
	ErrRefreshTokenUsed    = UnauthorizedError("Refresh token is expired or used")
	ErrIncorrectPassword   = ValidationError("Invalid old password")
	ErrNotQuizOwner        = ForbiddenError("You are not allowed to delete this quiz")
	ErrPermissionDenied    = ForbiddenError("Permission denied")
)

// HandleError 集中把错误转换为统一错误响应
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		if appErr.StatusCode >= http.StatusInternalServerError {
			logger.Log.Error(appErr.Message,
				zap.String("path", c.FullPath()),
				zap.Error(appErr.Err),
			)
		}
		Error(c, appErr.StatusCode, appErr.Message, appErr.Errors...)
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c)
	default:
		LogInternalError(c, err)
	}
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.String("path", c.FullPath()), zap.Error(err))
	InternalServerError(c)
}

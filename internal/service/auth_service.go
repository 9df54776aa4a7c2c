package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

type RegisterReq struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// AuthResult 登录/注册/刷新的返回值，User 已脱敏
type AuthResult struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (r *AuthResult) Tokens() util.TokenPair {
	return util.TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

func (s *AuthService) Register(ctx context.Context, req RegisterReq) (*AuthResult, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := model.NormalizeIdentity(req.Email)
	username := model.NormalizeIdentity(req.Username)

	if fullName == "" || email == "" || username == "" || util.IsBlank(req.Password) {
		return nil, util.ValidationError("All fields are required")
	}

	existing, err := s.UserRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, util.InternalError("Failed to check existing users", err)
	}
	if conflict := conflictFor(existing, username); conflict != nil {
		return nil, conflict
	}

	user := &model.User{
		FullName:      fullName,
		Email:         email,
		Username:      username,
		Role:          model.RoleUser,
		PlainPassword: req.Password,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		// 并发注册由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ConflictError("User with this username or email already exists")
		}
		return nil, util.InternalError("Something went wrong while registering the user", err)
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.String("userId", user.ID), zap.String("username", user.Username))
	return result, nil
}

// conflictFor 用户名冲突优先于邮箱冲突
func conflictFor(existing []model.User, username string) *util.AppError {
	if len(existing) == 0 {
		return nil
	}
	for _, u := range existing {
		if u.Username == username {
			return util.ErrUsernameTaken
		}
	}
	return util.ErrEmailTaken
}

func (s *AuthService) Login(ctx context.Context, req LoginReq) (*AuthResult, error) {
	username := model.NormalizeIdentity(req.Username)
	email := model.NormalizeIdentity(req.Email)

	if username == "" && email == "" {
		return nil, util.ValidationError("Username or email is required")
	}
	if req.Password == "" {
		return nil, util.ValidationError("Password is required")
	}

	user, err := s.UserRepo.FindByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, util.InternalError("Failed to fetch the user", err)
	}

	if !user.CheckPassword(req.Password) {
		return nil, util.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return util.ErrUnauthorized
	}
	if err := s.UserRepo.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUnauthorized
		}
		return util.InternalError("Failed to log out", err)
	}
	return nil
}

// RefreshAccessToken 校验刷新令牌并轮换，与库中保存的不一致视为已被使用
func (s *AuthService) RefreshAccessToken(ctx context.Context, incoming string) (*AuthResult, error) {
	if incoming == "" {
		return nil, util.ErrUnauthorized
	}

	claims, err := util.ParseTyped(incoming, s.Cfg.JWT.RefreshSecret, util.TokenTypeRefresh)
	if err != nil {
		return nil, util.ErrInvalidRefreshToken
	}

	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidRefreshToken
		}
		return nil, util.InternalError("Failed to fetch the user", err)
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(incoming)) != 1 {
		logger.Log.Warn("refresh token reuse detected", zap.String("userId", user.ID))
		return nil, util.ErrRefreshTokenUsed
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req ChangePasswordReq) error {
	if req.OldPassword == "" || util.IsBlank(req.NewPassword) {
		return util.ValidationError("Old password and new password are required")
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(req.OldPassword) {
		return util.ErrIncorrectPassword
	}

	user.PlainPassword = req.NewPassword
	if err := s.UserRepo.Update(ctx, user); err != nil {
		return util.InternalError("Failed to change password", err)
	}

	logger.Log.Info("password changed", zap.String("userId", user.ID))
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, util.ErrUnauthorized
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUnauthorized
		}
		return nil, util.InternalError("Failed to fetch the user", err)
	}
	return user, nil
}

// issueTokens 签发新的令牌对并把刷新令牌写回用户记录
func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*AuthResult, error) {
	access, err := util.GenerateAccessToken(user, s.Cfg.JWT.AccessSecret, s.Cfg.JWT.AccessExpire)
	if err != nil {
		return nil, util.InternalError("Something went wrong while generating tokens", err)
	}
	refresh, err := util.GenerateRefreshToken(user, s.Cfg.JWT.RefreshSecret, s.Cfg.JWT.RefreshExpire)
	if err != nil {
		return nil, util.InternalError("Something went wrong while generating tokens", err)
	}

	if err := s.UserRepo.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, util.InternalError("Something went wrong while generating tokens", err)
	}
	user.RefreshToken = refresh

	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

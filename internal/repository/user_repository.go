package repository

import (
	"context"
	"quiz_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameOrEmail 一次查询同时匹配用户名或邮箱
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		Limit(2).
		Find(&users).Error
	return users, err
}

// FindByLogin 登录时按用户名或邮箱查找单个账号
func (r *UserRepository) FindByLogin(ctx context.Context, username, email string) (*model.User, error) {
	query := r.DB.WithContext(ctx)
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	default:
		query = query.Where("email = ?", email)
	}

	var user model.User
	if err := query.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Save(user).Error
}

// UpdateRefreshToken 只更新刷新令牌列，空字符串表示注销
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	res := r.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

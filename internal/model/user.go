package model

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// swagger:model User
type User struct {
	Record
	FullName     string   `gorm:"size:100;not null" json:"fullName"`
	Email        string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Username     string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password     string   `gorm:"size:100;not null" json:"-"`
	Role         UserRole `gorm:"size:20;default:'user'" json:"role"`
	RefreshToken string   `gorm:"size:512" json:"-"`

	// PlainPassword 非持久化字段，保存前由 BeforeSave 哈希写入 Password
	PlainPassword string `gorm:"-" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeSave 在写库前对新密码做 bcrypt 哈希
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.PlainPassword == "" {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.PlainPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	u.PlainPassword = ""
	return nil
}

func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeIdentity 邮箱与用户名统一小写存储
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

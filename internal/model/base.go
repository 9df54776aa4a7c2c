package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record 是所有表共用的字段。记录硬删除，没有 deleted_at 列，
// 测验删除时由仓库层在事务中级联清理题目与答题记录
//
// swagger:model
type Record struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate 未指定ID时分配新ID，已有ID统一转为小写
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(r.ID) == "" {
		r.ID = NewID()
		return nil
	}
	r.ID = strings.ToLower(r.ID)
	return nil
}

// NewID 生成记录与选项ID
func NewID() string {
	return uuid.NewString()
}

package util

import (
	"strings"

	"github.com/google/uuid"
)

// IsValidID 判断路径参数是否为合法的记录ID
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsBlank 去除首尾空白后是否为空
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

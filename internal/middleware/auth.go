package middleware

import (
	"net/http"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bearerToken 从 Authorization 头取出令牌
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// AccessToken 优先读取 Cookie，其次 Authorization 头
func AccessToken(c *gin.Context) string {
	if token, err := c.Cookie(util.AccessTokenCookie); err == nil && token != "" {
		return token
	}
	return bearerToken(c)
}

// RefreshToken 依次读取 Cookie、Authorization 头
func RefreshToken(c *gin.Context) string {
	if token, err := c.Cookie(util.RefreshTokenCookie); err == nil && token != "" {
		return token
	}
	return bearerToken(c)
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := AccessToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			return
		}

		claims, err := util.ParseTyped(tokenString, cfg.JWT.AccessSecret, util.TokenTypeAccess)
		if err != nil {
			logger.Log.Debug("access token rejected", zap.Error(err))
			util.Error(c, http.StatusUnauthorized, "Invalid access token")
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
	}
}

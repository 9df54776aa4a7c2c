package util

import (
	"net/http"
	"quiz_backend/internal/config"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieOptions 每次请求按配置构造，显式传入写 Cookie 的函数
type CookieOptions struct {
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
	Path     string
	Domain   string
}

func NewCookieOptions(cfg config.CookieConfig) CookieOptions {
	return CookieOptions{
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: parseSameSite(cfg.SameSite),
		Path:     "/",
		Domain:   cfg.Domain,
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}

func setCookie(c *gin.Context, name, value string, maxAge int, opts CookieOptions) {
	c.SetSameSite(opts.SameSite)
	c.SetCookie(name, value, maxAge, opts.Path, opts.Domain, opts.Secure, opts.HTTPOnly)
}

func SetAuthCookies(c *gin.Context, tokens TokenPair, accessTTL, refreshTTL time.Duration, opts CookieOptions) {
	setCookie(c, AccessTokenCookie, tokens.AccessToken, int(accessTTL.Seconds()), opts)
	setCookie(c, RefreshTokenCookie, tokens.RefreshToken, int(refreshTTL.Seconds()), opts)
}

func ClearAuthCookies(c *gin.Context, opts CookieOptions) {
	setCookie(c, AccessTokenCookie, "", -1, opts)
	setCookie(c, RefreshTokenCookie, "", -1, opts)
}

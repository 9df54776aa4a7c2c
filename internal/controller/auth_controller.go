package controller

import (
	"quiz_backend/internal/config"
	"quiz_backend/internal/middleware"
	"quiz_backend/internal/service"
	"quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	Cfg         *config.Config
}

func NewAuthController(authService *service.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{
		AuthService: authService,
		Cfg:         cfg,
	}
}

func (c *AuthController) cookieOptions() util.CookieOptions {
	return util.NewCookieOptions(c.Cfg.Cookie)
}

func (c *AuthController) setAuthCookies(ctx *gin.Context, result *service.AuthResult) {
	util.SetAuthCookies(ctx, result.Tokens(), c.Cfg.JWT.AccessExpire, c.Cfg.JWT.RefreshExpire, c.cookieOptions())
}

// Register godoc
// @Summary 注册新用户
// @Description 注册成功后签发访问令牌与刷新令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterReq true "用户注册信息"
// @Success 201 {object} util.Response{data=service.AuthResult} "创建成功"
// @Failure 400 {object} util.ErrorResponse "请求参数错误"
// @Failure 409 {object} util.ErrorResponse "用户名或邮箱已存在"
// @Router /user/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	result, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.setAuthCookies(ctx, result)
	util.Created(ctx, result, "User registered successfully")
}

// Login godoc
// @Summary 用户登录
// @Description 使用用户名或邮箱登录，令牌同时写入 Cookie 与响应体
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginReq true "登录凭据"
// @Success 200 {object} util.Response{data=service.AuthResult} "成功"
// @Failure 401 {object} util.ErrorResponse "密码错误"
// @Failure 404 {object} util.ErrorResponse "用户不存在"
// @Router /user/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	result, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.setAuthCookies(ctx, result)
	util.Success(ctx, result, "User logged in successfully")
}

// Logout godoc
// @Summary 退出登录
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "成功"
// @Failure 401 {object} util.ErrorResponse "未授权"
// @Router /user/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AuthService.Logout(ctx.Request.Context(), claims.UserID); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.ClearAuthCookies(ctx, c.cookieOptions())
	util.Success(ctx, gin.H{}, "User logged out")
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken godoc
// @Summary 刷新访问令牌
// @Description 刷新令牌依次从 Cookie、请求体、Authorization 头读取，成功后轮换
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RefreshTokenRequest false "刷新令牌"
// @Success 200 {object} util.Response{data=service.AuthResult} "成功"
// @Failure 401 {object} util.ErrorResponse "令牌无效或已使用"
// @Router /user/refresh-token [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	token := ""
	if cookie, err := ctx.Cookie(util.RefreshTokenCookie); err == nil {
		token = cookie
	}
	if token == "" && ctx.Request.ContentLength != 0 {
		var req RefreshTokenRequest
		if err := ctx.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		token = middleware.RefreshToken(ctx)
	}

	result, err := c.AuthService.RefreshAccessToken(ctx.Request.Context(), token)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.setAuthCookies(ctx, result)
	util.Success(ctx, result, "Access token refreshed")
}

// ChangePassword godoc
// @Summary 修改密码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ChangePasswordReq true "旧密码与新密码"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.ErrorResponse "旧密码错误"
// @Router /user/change-password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ChangePasswordReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	if err := c.AuthService.ChangePassword(ctx.Request.Context(), claims.UserID, req); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{}, "Password changed successfully")
}

// CurrentUser godoc
// @Summary 获取当前用户
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.ErrorResponse "未授权"
// @Router /user/current-user [get]
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, user, "Current user fetched successfully")
}

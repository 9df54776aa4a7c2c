package controller

import (
	"quiz_backend/internal/service"
	"quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService       *service.QuizService
	SubmissionService *service.SubmissionService
}

func NewQuizController(quizService *service.QuizService, submissionService *service.SubmissionService) *QuizController {
	return &QuizController{
		QuizService:       quizService,
		SubmissionService: submissionService,
	}
}

// CreateQuiz godoc
// @Summary 创建测验
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateQuizReq true "测验标题"
// @Success 201 {object} util.Response{data=model.Quiz} "创建成功"
// @Failure 400 {object} util.ErrorResponse "标题为空"
// @Router /quiz/create [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Title is required")
		return
	}

	quiz, err := c.QuizService.CreateQuiz(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, quiz, "Quiz created successfully")
}

// ListQuizzes godoc
// @Summary 测验列表
// @Description 按创建时间倒序
// @Tags 测验
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Quiz} "成功"
// @Router /quiz/ [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListQuizzes(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, quizzes, "Quizzes retrieved successfully")
}

// GetQuiz godoc
// @Summary 测验详情
// @Tags 测验
// @Produce  json
// @Param   quizId path string true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizDetail} "成功"
// @Failure 404 {object} util.ErrorResponse "测验不存在"
// @Router /quiz/{quizId}/details [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	detail, err := c.QuizService.GetQuiz(ctx.Request.Context(), ctx.Param("quizId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, detail, "Quiz retrieved successfully")
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Description 同时删除题目与答题记录
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path string true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz} "成功"
// @Failure 403 {object} util.ErrorResponse "非创建者"
// @Failure 404 {object} util.ErrorResponse "测验不存在"
// @Router /quiz/{quizId}/delete [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.QuizService.DeleteQuiz(ctx.Request.Context(), ctx.Param("quizId"), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, quiz, "Quiz deleted successfully")
}

// SubmitQuiz godoc
// @Summary 提交答案
// @Description 重复提交会覆盖之前的答题记录
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path string true "测验ID"
// @Param   body body service.SubmitQuizReq true "答案列表"
// @Success 200 {object} util.Response{data=model.QuizAttempt} "成功"
// @Failure 400 {object} util.ErrorResponse "答案为空或格式错误"
// @Failure 401 {object} util.ErrorResponse "未授权"
// @Failure 404 {object} util.ErrorResponse "测验不存在或暂无题目"
// @Router /quiz/{quizId}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.UserID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Answers are required and should be a non-empty array")
		return
	}

	attempt, err := c.SubmissionService.SubmitQuiz(ctx.Request.Context(), ctx.Param("quizId"), claims.UserID, req.Answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, attempt, "Quiz submitted successfully")
}

// GetMyAttempt godoc
// @Summary 我的答题记录
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path string true "测验ID"
// @Success 200 {object} util.Response{data=model.QuizAttempt} "成功"
// @Failure 404 {object} util.ErrorResponse "暂无记录"
// @Router /quiz/{quizId}/attempt [get]
func (c *QuizController) GetMyAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.SubmissionService.GetAttempt(ctx.Request.Context(), ctx.Param("quizId"), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, attempt, "Quiz attempt retrieved successfully")
}

// ListAttempts godoc
// @Summary 测验的全部答题记录
// @Description 按得分降序、提交时间升序
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path string true "测验ID"
// @Success 200 {object} util.Response{data=[]model.QuizAttempt} "成功"
// @Router /quiz/{quizId}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	attempts, err := c.SubmissionService.ListAttempts(ctx.Request.Context(), ctx.Param("quizId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, attempts, "Quiz attempts retrieved successfully")
}

package controller

import (
	"quiz_backend/internal/service"
	"quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// bindQuestions 请求体可以是单个题目或题目数组
func bindQuestions(ctx *gin.Context) ([]service.QuestionReq, error) {
	var list []service.QuestionReq
	if err := ctx.ShouldBindBodyWith(&list, binding.JSON); err == nil {
		return list, nil
	}

	var single service.QuestionReq
	if err := ctx.ShouldBindBodyWith(&single, binding.JSON); err != nil {
		return nil, err
	}
	return []service.QuestionReq{single}, nil
}

// AddQuestions godoc
// @Summary 添加题目
// @Description 请求体可以是单个题目或数组，响应总是题目数组
// @Tags 题目
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   quizId path string true "测验ID"
// @Param   body body []service.QuestionReq true "题目"
// @Success 201 {object} util.Response{data=[]model.Question} "创建成功"
// @Failure 400 {object} util.ErrorResponse "题目校验失败"
// @Failure 404 {object} util.ErrorResponse "测验不存在"
// @Router /quiz/{quizId}/questions/add [post]
func (c *QuestionController) AddQuestions(ctx *gin.Context) {
	reqs, err := bindQuestions(ctx)
	if err != nil {
		util.BadRequest(ctx, "Question is required")
		return
	}

	questions, err := c.QuestionService.AddQuestions(ctx.Request.Context(), ctx.Param("quizId"), reqs)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, questions, "Question(s) added to quiz successfully")
}

// ListQuestions godoc
// @Summary 题目列表
// @Description 选项不包含正确性标记
// @Tags 题目
// @Produce  json
// @Param   quizId path string true "测验ID"
// @Success 200 {object} util.Response{data=[]model.PublicQuestion} "成功"
// @Failure 404 {object} util.ErrorResponse "测验不存在或暂无题目"
// @Router /quiz/{quizId} [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	questions, err := c.QuestionService.ListQuestions(ctx.Request.Context(), ctx.Param("quizId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, questions, "Questions retrieved successfully")
}

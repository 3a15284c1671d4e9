package controller

import (
	"errors"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/service"
	"fordrax_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	EvaluationService *service.EvaluationService
}

func NewEvaluationController(evaluationService *service.EvaluationService) *EvaluationController {
	return &EvaluationController{EvaluationService: evaluationService}
}

// GetQuiz godoc
// @Summary 获取模块测验
// @Description 学生端题目视图，选项不含答案键
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Success 200 {object} util.Response{data=[]service.QuizQuestion} "成功"
// @Failure 404 {object} util.Response "模块不存在"
// @Router /api/modules/{id}/quiz [get]
func (c *EvaluationController) GetQuiz(ctx *gin.Context) {
	questions, err := c.EvaluationService.GetQuiz(ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrModuleNotPublished):
			util.Error(ctx, 403, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, questions)
}

type submitQuizBody struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// SubmitQuiz godoc
// @Summary 提交测验答案
// @Description 服务端评分并落不可变评分记录；通过则签发证书并派发通知
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Param   body body submitQuizBody true "题目 ID 到所选选项 ID 的映射"
// @Success 200 {object} util.Response{data=service.SubmitResult} "成功"
// @Failure 400 {object} util.Response "题库为空或参数错误"
// @Failure 403 {object} util.Response "无活跃组织"
// @Router /api/modules/{id}/quiz [post]
func (c *EvaluationController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var body submitQuizBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.EvaluationService.Submit(claims.UserID, &service.SubmitQuizRequest{
		ModuleID: ctx.Param("id"),
		Answers:  body.Answers,
	})
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoActiveOrganization):
			util.Error(ctx, 403, err.Error())
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrModuleNotPublished):
			util.Error(ctx, 403, err.Error())
		case errors.Is(err, util.ErrEmptyQuestionSet):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// ListMine godoc
// @Summary 当前用户的评分记录
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleId query string false "按模块过滤"
// @Success 200 {object} util.Response{data=[]model.Evaluation} "成功"
// @Router /api/evaluations [get]
func (c *EvaluationController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	moduleID := ctx.Query("moduleId")
	var (
		evals interface{}
		err   error
	)
	if moduleID != "" {
		evals, err = c.EvaluationService.ListUserModuleEvaluations(claims.UserID, moduleID)
	} else {
		evals, err = c.EvaluationService.ListUserEvaluations(claims.UserID)
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, evals)
}

// Get godoc
// @Summary 获取单条评分记录
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "评分记录 ID"
// @Success 200 {object} util.Response{data=model.Evaluation} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/evaluations/{id} [get]
func (c *EvaluationController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	eval, err := c.EvaluationService.GetEvaluation(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrEvaluationNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if eval.UserID != claims.UserID && claims.Role != model.SuperAdmin {
		util.Forbidden(ctx)
		return
	}
	util.Success(ctx, eval)
}

package controller

import (
	"errors"
	"fordrax_backend/internal/service"
	"fordrax_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

// ListPublished godoc
// @Summary 模块目录
// @Description 学生端可见的已发布模块列表
// @Tags 模块
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.ModuleSummary} "成功"
// @Router /api/modules [get]
func (c *ModuleController) ListPublished(ctx *gin.Context) {
	modules, err := c.ModuleService.ListPublished(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// Get godoc
// @Summary 模块详情
// @Tags 模块
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Success 200 {object} util.Response{data=model.TrainingModule} "成功"
// @Failure 404 {object} util.Response "模块不存在"
// @Router /api/modules/{id} [get]
func (c *ModuleController) Get(ctx *gin.Context) {
	m, err := c.ModuleService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, m)
}

// --- 管理端 ---

// Create godoc
// @Summary 创建模块
// @Tags 模块管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateModuleRequest true "模块字段"
// @Success 201 {object} util.Response{data=model.TrainingModule} "创建成功"
// @Failure 400 {object} util.Response "slug 重复或参数错误"
// @Router /api/admin/modules [post]
func (c *ModuleController) Create(ctx *gin.Context) {
	var req service.CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.ModuleService.Create(&req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, m)
}

// List godoc
// @Summary 模块列表（含未发布）
// @Tags 模块管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/admin/modules [get]
func (c *ModuleController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	modules, total, err := c.ModuleService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: modules, Total: total, Page: page, Limit: limit})
}

// Update godoc
// @Summary 更新模块
// @Tags 模块管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Param   body body service.UpdateModuleRequest true "模块字段"
// @Success 200 {object} util.Response{data=model.TrainingModule} "成功"
// @Failure 404 {object} util.Response "模块不存在"
// @Router /api/admin/modules/{id} [put]
func (c *ModuleController) Update(ctx *gin.Context) {
	var req service.UpdateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.ModuleService.Update(ctx.Param("id"), &req)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, m)
}

// Delete godoc
// @Summary 删除模块
// @Tags 模块管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/modules/{id} [delete]
func (c *ModuleController) Delete(ctx *gin.Context) {
	if err := c.ModuleService.Delete(ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type setPublishedBody struct {
	Published *bool `json:"published" binding:"required"`
}

// SetPublished godoc
// @Summary 发布/下架模块
// @Tags 模块管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Param   body body setPublishedBody true "发布状态"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "模块不存在"
// @Router /api/admin/modules/{id}/publish [put]
func (c *ModuleController) SetPublished(ctx *gin.Context) {
	var body setPublishedBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ModuleService.SetPublished(ctx.Param("id"), *body.Published); err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// UploadPoster godoc
// @Summary 上传模块封面
// @Tags 模块管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Param   file formData file true "封面图片"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/admin/modules/{id}/poster [post]
func (c *ModuleController) UploadPoster(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	url, err := c.ModuleService.UploadPoster(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// UploadVideo godoc
// @Summary 上传模块讲解视频
// @Description 上传后探测视频时长并写回模块
// @Tags 模块管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Param   file formData file true "视频文件"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/admin/modules/{id}/video [post]
func (c *ModuleController) UploadVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	url, err := c.ModuleService.UploadVideo(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// --- 题目管理 ---

// ListQuestions godoc
// @Summary 模块题目列表（含答案键）
// @Tags 模块管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Success 200 {object} util.Response{data=[]model.Question} "成功"
// @Router /api/admin/modules/{id}/questions [get]
func (c *ModuleController) ListQuestions(ctx *gin.Context) {
	questions, err := c.ModuleService.ListQuestions(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// CreateQuestion godoc
// @Summary 新建题目
// @Description 选项必须有且仅有一个正确答案
// @Tags 模块管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "模块 ID"
// @Param   body body service.CreateQuestionRequest true "题目与选项"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Failure 400 {object} util.Response "选项不合法"
// @Router /api/admin/modules/{id}/questions [post]
func (c *ModuleController) CreateQuestion(ctx *gin.Context) {
	var req service.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ModuleService.CreateQuestion(ctx.Param("id"), &req)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 模块管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path string true "题目 ID"
// @Param   body body service.UpdateQuestionRequest true "题目字段"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Router /api/admin/questions/{questionId} [put]
func (c *ModuleController) UpdateQuestion(ctx *gin.Context) {
	var req service.UpdateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ModuleService.UpdateQuestion(ctx.Param("questionId"), &req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 模块管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path string true "题目 ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/questions/{questionId} [delete]
func (c *ModuleController) DeleteQuestion(ctx *gin.Context) {
	if err := c.ModuleService.DeleteQuestion(ctx.Param("questionId")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

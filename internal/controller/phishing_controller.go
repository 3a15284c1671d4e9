package controller

import (
	"errors"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/service"
	"fordrax_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PhishingController struct {
	PhishingService *service.PhishingService
}

func NewPhishingController(phishingService *service.PhishingService) *PhishingController {
	return &PhishingController{PhishingService: phishingService}
}

func (c *PhishingController) handleErr(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrPermissionDenied) {
		util.Forbidden(ctx)
		return
	}
	util.LogInternalError(ctx, err)
}

// Create godoc
// @Summary 创建钓鱼演练
// @Tags 钓鱼演练
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   body body service.CreateSimulationRequest true "演练字段"
// @Success 201 {object} util.Response{data=model.PhishingSimulation} "创建成功"
// @Router /api/orgs/{orgId}/phishing [post]
func (c *PhishingController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateSimulationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sim, err := c.PhishingService.Create(ctx.Param("orgId"), claims.UserID, &req)
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Created(ctx, sim)
}

// List godoc
// @Summary 组织的演练列表
// @Tags 钓鱼演练
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/orgs/{orgId}/phishing [get]
func (c *PhishingController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	sims, total, err := c.PhishingService.ListByOrg(ctx.Param("orgId"), claims.UserID, page, limit)
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: sims, Total: total, Page: page, Limit: limit})
}

// Launch godoc
// @Summary 启动演练
// @Tags 钓鱼演练
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   id path string true "演练 ID"
// @Success 200 {object} util.Response{data=model.PhishingSimulation} "成功"
// @Router /api/orgs/{orgId}/phishing/{id}/launch [post]
func (c *PhishingController) Launch(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sim, err := c.PhishingService.Launch(ctx.Param("orgId"), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Success(ctx, sim)
}

// Close godoc
// @Summary 关闭演练
// @Tags 钓鱼演练
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   id path string true "演练 ID"
// @Success 200 {object} util.Response{data=model.PhishingSimulation} "成功"
// @Router /api/orgs/{orgId}/phishing/{id}/close [post]
func (c *PhishingController) Close(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sim, err := c.PhishingService.Close(ctx.Param("orgId"), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Success(ctx, sim)
}

// GetStats godoc
// @Summary 演练行为统计
// @Tags 钓鱼演练
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   id path string true "演练 ID"
// @Success 200 {object} util.Response{data=repository.SimulationStats} "成功"
// @Router /api/orgs/{orgId}/phishing/{id}/stats [get]
func (c *PhishingController) GetStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.PhishingService.GetStats(ctx.Param("orgId"), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// TrackEvent godoc
// @Summary 记录钓鱼演练行为事件
// @Description 由演练邮件中的追踪链接触发，不要求登录态
// @Tags 钓鱼演练
// @Produce  json
// @Param   id path string true "演练 ID"
// @Param   type path string true "事件类型" Enums(sent, opened, clicked, reported)
// @Param   uid query int true "员工用户 ID"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/phishing/{id}/track/{type} [get]
func (c *PhishingController) TrackEvent(ctx *gin.Context) {
	eventType := model.PhishingEventType(ctx.Param("type"))
	switch eventType {
	case model.PhishingSent, model.PhishingOpened, model.PhishingClicked, model.PhishingReported:
	default:
		util.BadRequest(ctx, "invalid event type")
		return
	}

	uid, err := strconv.ParseUint(ctx.Query("uid"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "uid is required")
		return
	}

	if err := c.PhishingService.RecordEvent(ctx.Param("id"), uint(uid), eventType); err != nil {
		util.BadRequest(ctx, "event not recorded")
		return
	}
	util.Success(ctx, nil)
}

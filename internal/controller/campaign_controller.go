package controller

import (
	"errors"
	"fordrax_backend/internal/service"
	"fordrax_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func NewCampaignController(campaignService *service.CampaignService) *CampaignController {
	return &CampaignController{CampaignService: campaignService}
}

func (c *CampaignController) handleErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrModuleNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrModuleNotPublished):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// Create godoc
// @Summary 创建培训活动
// @Tags 活动
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   body body service.CreateCampaignRequest true "活动字段"
// @Success 201 {object} util.Response{data=model.Campaign} "创建成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/orgs/{orgId}/campaigns [post]
func (c *CampaignController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateCampaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	campaign, err := c.CampaignService.Create(ctx.Param("orgId"), claims.UserID, &req)
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Created(ctx, campaign)
}

// List godoc
// @Summary 组织的活动列表
// @Tags 活动
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/orgs/{orgId}/campaigns [get]
func (c *CampaignController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	campaigns, total, err := c.CampaignService.ListByOrg(ctx.Param("orgId"), claims.UserID, page, limit)
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: campaigns, Total: total, Page: page, Limit: limit})
}

type setCampaignStatusBody struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus godoc
// @Summary 活动状态流转
// @Description draft → active → closed
// @Tags 活动
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   id path string true "活动 ID"
// @Param   body body setCampaignStatusBody true "目标状态"
// @Success 200 {object} util.Response{data=model.Campaign} "成功"
// @Router /api/orgs/{orgId}/campaigns/{id}/status [put]
func (c *CampaignController) SetStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var body setCampaignStatusBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	campaign, err := c.CampaignService.SetStatus(ctx.Param("orgId"), claims.UserID, ctx.Param("id"), body.Status)
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Success(ctx, campaign)
}

// Assign godoc
// @Summary 分配活动给员工
// @Tags 活动
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   id path string true "活动 ID"
// @Param   body body service.AssignCampaignRequest true "员工 ID 列表"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/orgs/{orgId}/campaigns/{id}/assign [post]
func (c *CampaignController) Assign(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssignCampaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assigned, err := c.CampaignService.Assign(ctx.Param("orgId"), claims.UserID, ctx.Param("id"), &req)
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"assigned": assigned})
}

// ListAssignments godoc
// @Summary 活动的分配明细
// @Tags 活动
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   id path string true "活动 ID"
// @Success 200 {object} util.Response{data=[]model.CampaignAssignment} "成功"
// @Router /api/orgs/{orgId}/campaigns/{id}/assignments [get]
func (c *CampaignController) ListAssignments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	assignments, err := c.CampaignService.ListAssignments(ctx.Param("orgId"), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.handleErr(ctx, err)
		return
	}
	util.Success(ctx, assignments)
}

// ListMine godoc
// @Summary 分配给我的活动
// @Tags 活动
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CampaignAssignment} "成功"
// @Router /api/assignments [get]
func (c *CampaignController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	assignments, err := c.CampaignService.ListMyAssignments(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, assignments)
}

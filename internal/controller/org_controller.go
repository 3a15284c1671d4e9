package controller

import (
	"errors"
	"fordrax_backend/internal/service"
	"fordrax_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type OrgController struct {
	OrgService *service.OrgService
}

func NewOrgController(orgService *service.OrgService) *OrgController {
	return &OrgController{OrgService: orgService}
}

// Create godoc
// @Summary 创建组织
// @Description 创建组织并把当前用户登记为 owner
// @Tags 组织
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateOrgRequest true "组织资料"
// @Success 201 {object} util.Response{data=model.Org} "创建成功"
// @Router /api/orgs [post]
func (c *OrgController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateOrgRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	org, err := c.OrgService.Create(claims.UserID, &req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, org)
}

// Get godoc
// @Summary 组织详情
// @Tags 组织
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Success 200 {object} util.Response{data=model.Org} "成功"
// @Failure 404 {object} util.Response "组织不存在"
// @Router /api/orgs/{orgId} [get]
func (c *OrgController) Get(ctx *gin.Context) {
	org, err := c.OrgService.Get(ctx.Param("orgId"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, org)
}

// UpdateSettings godoc
// @Summary 更新组织资料
// @Description 仅组织 admin/owner 可操作
// @Tags 组织
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   body body service.UpdateOrgSettingsRequest true "组织资料"
// @Success 200 {object} util.Response{data=model.Org} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/orgs/{orgId}/settings [put]
func (c *OrgController) UpdateSettings(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateOrgSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	org, err := c.OrgService.UpdateSettings(ctx.Param("orgId"), claims.UserID, &req)
	if err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, org)
}

// AddMember godoc
// @Summary 添加组织成员
// @Description 按邮箱把已注册用户拉入组织
// @Tags 组织
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   body body service.AddMemberRequest true "成员邮箱与角色"
// @Success 201 {object} util.Response{data=model.OrgMember} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/orgs/{orgId}/members [post]
func (c *OrgController) AddMember(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	member, err := c.OrgService.AddMember(ctx.Param("orgId"), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, member)
}

// ListMembers godoc
// @Summary 组织成员列表
// @Tags 组织
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/orgs/{orgId}/members [get]
func (c *OrgController) ListMembers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	members, total, err := c.OrgService.ListMembers(ctx.Param("orgId"), claims.UserID, page, limit)
	if err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, util.PageResponse{List: members, Total: total, Page: page, Limit: limit})
}

type setMemberActiveBody struct {
	UserID uint  `json:"userId" binding:"required"`
	Active *bool `json:"active" binding:"required"`
}

// SetMemberActive godoc
// @Summary 停用/恢复成员资格
// @Description 停用后该成员无法提交本组织的测验
// @Tags 组织
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Param   body body setMemberActiveBody true "成员与状态"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/orgs/{orgId}/members/active [put]
func (c *OrgController) SetMemberActive(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var body setMemberActiveBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.OrgService.SetMemberActive(ctx.Param("orgId"), claims.UserID, body.UserID, *body.Active); err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

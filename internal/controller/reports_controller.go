package controller

import (
	"errors"
	"fordrax_backend/internal/service"
	"fordrax_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportsController struct {
	ReportsService *service.ReportsService
}

func NewReportsController(reportsService *service.ReportsService) *ReportsController {
	return &ReportsController{ReportsService: reportsService}
}

// OrgOverview godoc
// @Summary 组织培训概况
// @Description 评分通过率、证书数量与钓鱼演练行为的聚合报表
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Param   orgId path string true "组织 ID"
// @Success 200 {object} util.Response{data=service.OrgReport} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/orgs/{orgId}/reports/overview [get]
func (c *ReportsController) OrgOverview(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	report, err := c.ReportsService.OrgOverview(ctx.Param("orgId"), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}

package controller

import (
	"errors"
	"fordrax_backend/internal/service"
	"fordrax_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// ListMine godoc
// @Summary 当前用户的证书
// @Tags 证书
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Certificate} "成功"
// @Router /api/certificates [get]
func (c *CertificateController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.CertificateService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// Get godoc
// @Summary 按证书编号获取证书
// @Description 公开端点，凭证书编号即可查看
// @Tags 证书
// @Produce  json
// @Param   uuid path string true "证书编号"
// @Success 200 {object} util.Response{data=model.Certificate} "成功"
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/certificates/{uuid} [get]
func (c *CertificateController) Get(ctx *gin.Context) {
	cert, err := c.CertificateService.Get(ctx.Param("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrCertificateNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, cert)
}

// Verify godoc
// @Summary 验证证书完整性
// @Description 按存储字段重算链文本摘要并与存储摘要比对，公开端点
// @Tags 证书
// @Produce  json
// @Param   uuid path string true "证书编号"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/certificates/{uuid}/verify [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	cert, verification, err := c.CertificateService.Verify(ctx.Param("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrCertificateNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{
		"certificate":  cert,
		"verification": verification,
	})
}

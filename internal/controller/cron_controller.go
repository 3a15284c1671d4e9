package controller

import (
	"crypto/subtle"
	"errors"
	"fordrax_backend/internal/service"
	"fordrax_backend/internal/util"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CronController 外部调度器触发的维护端点，用共享密钥鉴权
type CronController struct {
	NotificationService *service.NotificationService
	Secret              string
}

func NewCronController(notificationService *service.NotificationService, secret string) *CronController {
	return &CronController{
		NotificationService: notificationService,
		Secret:              secret,
	}
}

func (c *CronController) authorized(ctx *gin.Context) bool {
	provided := ctx.Query("secret")
	if provided == "" {
		header := ctx.GetHeader("Authorization")
		provided = strings.TrimPrefix(header, "Bearer ")
	}
	if c.Secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(c.Secret)) != 1 {
		return false
	}
	return true
}

// EmailAgent godoc
// @Summary 排空邮件任务队列
// @Description 领取一批 queued 任务逐条投递，单条失败不影响批内其余任务
// @Tags 调度
// @Produce  json
// @Param   secret query string true "调度密钥"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "密钥错误"
// @Failure 409 {object} util.Response "另一实例正在运行"
// @Router /api/cron/email-agent [get]
func (c *CronController) EmailAgent(ctx *gin.Context) {
	if !c.authorized(ctx) {
		util.Unauthorized(ctx)
		return
	}

	outcomes, err := c.NotificationService.ProcessBatch(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrAgentRunning) {
			util.Error(ctx, http.StatusConflict, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"processed": len(outcomes),
		"jobs":      outcomes,
	})
}

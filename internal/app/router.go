package app

import (
	"fordrax_backend/docs"
	"fordrax_backend/internal/config"
	"fordrax_backend/internal/middleware"
	"fordrax_backend/internal/model"
	"fordrax_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由（无需登录）
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerEmployeeRoutes(authGroup, c)
		a.registerOrgRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 证书查验：凭编号即可，第三方无需账号
		public.GET("/certificates/:uuid", c.certificate.Get)
		public.GET("/certificates/:uuid/verify", c.certificate.Verify)

		// 外部调度器触发的队列排空，共享密钥鉴权
		public.GET("/cron/email-agent", c.cron.EmailAgent)

		// 钓鱼演练邮件中的追踪链接
		public.GET("/phishing/:id/track/:type", c.phishing.TrackEvent)
	}
}

func (a *App) registerEmployeeRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.user.UpdateProfile)
	rg.PUT("/profile/password", c.user.ChangePassword)
	rg.GET("/profile/memberships", c.user.ListMemberships)

	// 模块目录与测验
	rg.GET("/modules", c.module.ListPublished)
	rg.GET("/modules/:id", c.module.Get)
	rg.GET("/modules/:id/quiz", c.evaluation.GetQuiz)
	rg.POST("/modules/:id/quiz", c.evaluation.SubmitQuiz)

	// 评分记录与证书
	rg.GET("/evaluations", c.evaluation.ListMine)
	rg.GET("/evaluations/:id", c.evaluation.Get)
	rg.GET("/certificates", c.certificate.ListMine)

	// 分配给我的活动
	rg.GET("/assignments", c.campaign.ListMine)
}

func (a *App) registerOrgRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/orgs", c.org.Create)

	orgs := rg.Group("/orgs/:orgId")
	{
		orgs.GET("", c.org.Get)
		orgs.PUT("/settings", c.org.UpdateSettings)
		orgs.POST("/members", c.org.AddMember)
		orgs.GET("/members", c.org.ListMembers)
		orgs.PUT("/members/active", c.org.SetMemberActive)

		orgs.POST("/campaigns", c.campaign.Create)
		orgs.GET("/campaigns", c.campaign.List)
		orgs.PUT("/campaigns/:id/status", c.campaign.SetStatus)
		orgs.POST("/campaigns/:id/assign", c.campaign.Assign)
		orgs.GET("/campaigns/:id/assignments", c.campaign.ListAssignments)

		orgs.POST("/phishing", c.phishing.Create)
		orgs.GET("/phishing", c.phishing.List)
		orgs.POST("/phishing/:id/launch", c.phishing.Launch)
		orgs.POST("/phishing/:id/close", c.phishing.Close)
		orgs.GET("/phishing/:id/stats", c.phishing.GetStats)

		orgs.GET("/reports/overview", c.reports.OrgOverview)
	}
}

// registerAdminRoutes 平台管理端：模块与题库的维护仅限 super_admin
func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.SuperAdmin))
	{
		admin.POST("/modules", c.module.Create)
		admin.GET("/modules", c.module.List)
		admin.PUT("/modules/:id", c.module.Update)
		admin.DELETE("/modules/:id", c.module.Delete)
		admin.PUT("/modules/:id/publish", c.module.SetPublished)
		admin.POST("/modules/:id/poster", c.module.UploadPoster)
		admin.POST("/modules/:id/video", c.module.UploadVideo)

		admin.GET("/modules/:id/questions", c.module.ListQuestions)
		admin.POST("/modules/:id/questions", c.module.CreateQuestion)
		admin.PUT("/questions/:questionId", c.module.UpdateQuestion)
		admin.DELETE("/questions/:questionId", c.module.DeleteQuestion)
	}
}

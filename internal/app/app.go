package app

import (
	"context"
	"fordrax_backend/internal/config"
	"fordrax_backend/internal/controller"
	"fordrax_backend/internal/repository"
	"fordrax_backend/internal/service"
	"fordrax_backend/pkg/database"
	"fordrax_backend/pkg/logger"
	"fordrax_backend/pkg/monitoring"
	"fordrax_backend/pkg/security"
	"fordrax_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	org         *repository.OrgRepository
	membership  *repository.MembershipRepository
	module      *repository.ModuleRepository
	question    *repository.QuestionRepository
	evaluation  *repository.EvaluationRepository
	certificate *repository.CertificateRepository
	emailJob    *repository.EmailJobRepository
	campaign    *repository.CampaignRepository
	phishing    *repository.PhishingRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	storage      *service.StorageService
	module       *service.ModuleService
	org          *service.OrgService
	campaign     *service.CampaignService
	phishing     *service.PhishingService
	reports      *service.ReportsService
	certificate  *service.CertificateService
	evaluation   *service.EvaluationService
	notification *service.NotificationService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	module      *controller.ModuleController
	evaluation  *controller.EvaluationController
	certificate *controller.CertificateController
	org         *controller.OrgController
	campaign    *controller.CampaignController
	phishing    *controller.PhishingController
	reports     *controller.ReportsController
	cron        *controller.CronController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigReload 配置文件热更新后依次通知各回调
func (a *App) OnConfigReload(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	// 队列写入走独立会话，与请求路径的句柄分离
	serviceDB := db.Session(&gorm.Session{NewDB: true})

	return &repositories{
		user:        repository.NewUserRepository(db),
		org:         repository.NewOrgRepository(db),
		membership:  repository.NewMembershipRepository(db),
		module:      repository.NewModuleRepository(db),
		question:    repository.NewQuestionRepository(db),
		evaluation:  repository.NewEvaluationRepository(db),
		certificate: repository.NewCertificateRepository(db),
		emailJob:    repository.NewEmailJobRepository(db, serviceDB),
		campaign:    repository.NewCampaignRepository(db),
		phishing:    repository.NewPhishingRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.membership)
	s.module = service.NewModuleService(repos.module, repos.question, s.storage, rdb)
	s.org = service.NewOrgService(repos.org, repos.user)
	s.campaign = service.NewCampaignService(repos.campaign, repos.module, repos.org)
	s.phishing = service.NewPhishingService(repos.phishing, repos.org)
	s.reports = service.NewReportsService(repos.evaluation, repos.certificate, repos.phishing, repos.org)

	s.certificate = service.NewCertificateService(repos.certificate)

	sender := service.NewEmailSender(&cfg.Mail)
	s.notification = service.NewNotificationService(repos.emailJob, sender, rdb, cfg.Cron.BatchSize)

	s.evaluation = service.NewEvaluationService(
		repos.membership,
		repos.module,
		repos.question,
		repos.evaluation,
		s.certificate,
		s.notification,
		repos.user,
		repos.campaign,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, cfg *config.Config) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, s.user),
		user:        controller.NewUserController(s.user),
		module:      controller.NewModuleController(s.module),
		evaluation:  controller.NewEvaluationController(s.evaluation),
		certificate: controller.NewCertificateController(s.certificate),
		org:         controller.NewOrgController(s.org),
		campaign:    controller.NewCampaignController(s.campaign),
		phishing:    controller.NewPhishingController(s.phishing),
		reports:     controller.NewReportsController(s.reports),
		cron:        controller.NewCronController(s.notification, cfg.Cron.Secret),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 证书对账：评分已通过但证书缺失的记录定期补发并入队通知
func (a *App) startBackgroundTasks(s *services, repos *repositories) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		for range ticker.C {
			repaired, err := s.certificate.Reconcile(repos.evaluation, repos.user, repos.module, s.notification, 50)
			if err != nil {
				logger.Log.Error("certificate reconcile error", zap.Error(err))
				continue
			}
			if repaired > 0 {
				logger.Log.Info("certificates reissued", zap.Int("count", repaired))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, cfg)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("fordrax-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, repos)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

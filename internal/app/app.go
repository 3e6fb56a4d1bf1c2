package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"screen_balance_backend/internal/config"
	"screen_balance_backend/internal/controller"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/service"
	"screen_balance_backend/pkg/configwatcher"
	"screen_balance_backend/pkg/database"
	"screen_balance_backend/pkg/logger"
	"screen_balance_backend/pkg/monitoring"
	"screen_balance_backend/pkg/security"
	"screen_balance_backend/pkg/tracing"

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
	shutdownTracer  func(context.Context) error
}

type repositories struct {
	usageEvent   *repository.UsageEventRepository
	dailyUsage   *repository.DailyUsageRepository
	appLimit     *repository.AppLimitRepository
	badge        *repository.BadgeRepository
	threshold    *repository.ThresholdRepository
	userSettings *repository.UserSettingsRepository
	reminder     *repository.ReminderRepository
}

type services struct {
	options      *service.EngineOptions
	cache        *service.DashboardCache
	events       *service.EventStore
	userSettings *service.UserSettingsService
	aggregator   *service.DailyAggregator
	builder      *service.WeeklySummaryBuilder
	badges       *service.BadgeEngine
	notifier     *service.ThresholdNotifier
	appLimit     *service.AppLimitService
	usage        *service.UsageService
	dashboard    *service.DashboardService
	reminder     *service.ReminderService
	simulation   *service.SimulationService
	recompute    *service.RecomputeJob
}

type controllers struct {
	dashboard     *controller.DashboardController
	appSettings   *controller.AppSettingsController
	usageTracking *controller.UsageTrackingController
	notification  *controller.NotificationController
	reminder      *controller.ReminderController
	userSettings  *controller.UserSettingsController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		usageEvent:   repository.NewUsageEventRepository(db),
		dailyUsage:   repository.NewDailyUsageRepository(db),
		appLimit:     repository.NewAppLimitRepository(db),
		badge:        repository.NewBadgeRepository(db),
		threshold:    repository.NewThresholdRepository(db),
		userSettings: repository.NewUserSettingsRepository(db),
		reminder:     repository.NewReminderRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, opts *service.EngineOptions, rdb *redis.Client) *services {
	s := &services{options: opts}

	s.cache = service.NewDashboardCache(rdb, opts.CacheTTL)
	s.events = service.NewEventStore(repos.usageEvent, opts)
	s.userSettings = service.NewUserSettingsService(repos.userSettings, s.cache, opts)
	s.aggregator = service.NewDailyAggregator(s.events, repos.dailyUsage, s.userSettings, opts)
	s.builder = service.NewWeeklySummaryBuilder(repos.dailyUsage, s.aggregator, s.events, s.userSettings, opts)
	s.badges = service.NewBadgeEngine(repos.badge, repos.appLimit, s.builder, opts)
	s.notifier = service.NewThresholdNotifier(repos.appLimit, repos.dailyUsage, repos.threshold, repos.reminder, rdb, opts)

	s.appLimit = service.NewAppLimitService(repos.appLimit, s.cache, opts)
	s.usage = service.NewUsageService(s.events, s.aggregator, s.notifier, s.userSettings, s.cache)
	s.dashboard = service.NewDashboardService(s.aggregator, s.builder, s.badges, s.userSettings, s.cache, opts)
	s.reminder = service.NewReminderService(repos.reminder)
	s.simulation = service.NewSimulationService(s.events, s.aggregator, repos.appLimit, s.userSettings, s.cache, opts)
	s.recompute = service.NewRecomputeJob(s.events, s.dashboard, cfg.Engine.RecomputeInterval(), cfg.Engine.RecomputeConcurrency)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		dashboard:     controller.NewDashboardController(s.dashboard),
		appSettings:   controller.NewAppSettingsController(s.appLimit),
		usageTracking: controller.NewUsageTrackingController(s.usage, s.simulation),
		notification:  controller.NewNotificationController(s.notifier),
		reminder:      controller.NewReminderController(s.reminder),
		userSettings:  controller.NewUserSettingsController(s.userSettings),
		health:        controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	s.recompute.Start(ctx)

	if a.Config.FilePath == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.Config.FilePath, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	opts, err := service.NewEngineOptions(cfg.Engine)
	if err != nil {
		logger.Log.Fatal("Invalid engine config", zap.Error(err))
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, opts, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.shutdownTracer = tp.Shutdown
	}

	app.registerRoutes(router, controllers, cfg)
	app.RegisterConfigCallback(configwatcher.LogLevelReloader)

	return app
}

// NewRecomputeJob builds just enough of the app to run recompute passes outside the server.
func NewRecomputeJob(cfg *config.Config) (*service.RecomputeJob, func(), error) {
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, nil, err
	}
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	opts, err := service.NewEngineOptions(cfg.Engine)
	if err != nil {
		return nil, nil, err
	}

	a := &App{Config: cfg, DB: db, Redis: rdb}
	s := a.initServices(a.initRepositories(db), cfg, opts, rdb)

	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = logger.Log.Sync()
	}
	return s.recompute, cleanup, nil
}

func (a *App) Run() {
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	a.startBackgroundTasks(bgCtx, a.services)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}

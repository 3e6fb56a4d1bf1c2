package app

import (
	"screen_balance_backend/internal/config"
	"screen_balance_backend/internal/middleware"
	"screen_balance_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要用户身份的路由
	userGroup := router.Group("/api")
	userGroup.Use(middleware.IdentityMiddleware(cfg))
	{
		a.registerUsageRoutes(userGroup, c)
		a.registerSettingsRoutes(userGroup, c)
	}
}

func (a *App) registerUsageRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/dashboard", c.dashboard.GetDashboard)
	group.POST("/dashboard/recompute", c.dashboard.Recompute)

	group.POST("/usage-tracking", c.usageTracking.Track)
	group.POST("/simulate-usage", c.usageTracking.SimulateUsage)

	group.GET("/notifications", c.notification.List)
	group.POST("/notifications/:id/ack", c.notification.Acknowledge)
}

func (a *App) registerSettingsRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/app-settings", c.appSettings.GetAppSettings)
	group.POST("/app-settings", c.appSettings.SaveAppSettings)

	group.GET("/reminders", c.reminder.GetReminders)
	group.POST("/reminders", c.reminder.SaveReminders)

	group.GET("/user/settings", c.userSettings.GetSettings)
	group.PUT("/user/settings", c.userSettings.UpdateSettings)
}

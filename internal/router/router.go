package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pulsewatch/pulsewatch/internal/handlers"
	"github.com/pulsewatch/pulsewatch/internal/middleware"
	"github.com/pulsewatch/pulsewatch/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", handlers.WebSocket)

		api.POST("/reports", handlers.CreateReport)

		api.GET("/dashboard", handlers.GetDashboard)
		api.GET("/metrics/:metric_name", handlers.GetMetricSeries)

		auth := api.Group("/auth")
		{
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
		}

		admin := api.Group("/admin", middleware.AdminMiddleware())
		{
			admin.GET("/intervals", handlers.GetIntervals)
			admin.PUT("/intervals/:poller", handlers.UpdateInterval)
			admin.POST("/intervals/reset", handlers.ResetIntervals)

			admin.GET("/report-config", handlers.GetReportConfig)
			admin.PUT("/report-config", handlers.UpdateReportConfig)

			admin.PUT("/recipients/guilds/:guild_id", handlers.RegisterGuild)
			admin.DELETE("/recipients/guilds/:guild_id", handlers.UnregisterGuild)
			admin.PUT("/recipients/users/:user_id", handlers.RegisterUser)
			admin.DELETE("/recipients/users/:user_id", handlers.UnregisterUser)
		}
	}

	return r
}

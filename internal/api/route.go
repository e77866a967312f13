package api

import (
	"BrainScript/internal/api/middleware"
	"BrainScript/internal/pkg/logger"
	"BrainScript/internal/pkg/metrics"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	heartbeatPath  = "/api/presence/heartbeat/:post_id"
	presenceWsPath = "/api/presence/ws/:post_id"
	webhookPath    = "/api/webhooks/identity"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Metrics & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(metrics.GinMiddleware())
	// 心跳频率高、WS 为长连接，不做审计
	r.Use(middleware.AuditMiddleware(heartbeatPath, presenceWsPath, webhookPath, "/metrics"))
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/metrics", metrics.Handler())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		{
			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("/recent", group.PostHandler.GetRecent)
				authOptGroup.GET("/trending", group.PostHandler.GetTrending)
				authOptGroup.GET("/popular", group.PostHandler.GetPopular)
				authOptGroup.GET("/categories", group.PostHandler.ListCategories)
				authOptGroup.GET("/check-title", group.PostHandler.CheckTitle)
				authOptGroup.GET("/slug/:slug", group.PostHandler.GetBySlug)
				authOptGroup.GET("/:post_id", group.PostHandler.GetPost)
				authOptGroup.GET("/:post_id/state", group.PostHandler.GetPostState)
				authOptGroup.POST("/:post_id/view", group.PostHandler.IncrementView)
				authOptGroup.POST("/:post_id/read-time", group.PostHandler.TrackReadTime)
				authOptGroup.GET("/mine/stats", group.PostHandler.GetMyStats)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
				authGroup.GET("/mine", group.PostHandler.GetMyPosts)
			}
		}

		engagementGroup := apiGroup.Group("/engagement")
		{
			engagementGroup.GET("/comments/:post_id", group.EngagementHandler.ListComments)

			authGroup := engagementGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/likes/:post_id", group.EngagementHandler.ToggleLike)
				authGroup.POST("/saves/:post_id", group.EngagementHandler.ToggleSave)
				authGroup.GET("/saves", group.EngagementHandler.GetSavedPosts)

				authGroup.POST("/comments", group.EngagementHandler.CreateComment)
				authGroup.PUT("/comments/:comment_id", group.EngagementHandler.UpdateComment)
				authGroup.DELETE("/comments/:comment_id", group.EngagementHandler.DeleteComment)
			}
		}

		presenceGroup := apiGroup.Group("/presence")
		presenceGroup.Use(middleware.AuthOptionalMiddleware(), middleware.ReaderSessionMiddleware())
		{
			presenceGroup.POST("/heartbeat/:post_id", group.PresenceHandler.Heartbeat)
			presenceGroup.GET("/readers/:post_id", group.PresenceHandler.GetActiveReaders)
			presenceGroup.GET("/count/:post_id", group.PresenceHandler.GetViewerCount)
			presenceGroup.GET("/ws/:post_id", group.WSHandler.Connect)
		}

		userGroup := apiGroup.Group("/users")
		{
			// 无需登录即可访问的接口
			userGroup.GET("/top-writers", group.UserHandler.GetTopWriters)
			userGroup.GET("/suggestions", group.UserHandler.GetSuggestions)
			userGroup.GET("/:user_id/profile", group.UserHandler.GetProfile)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/me", group.UserHandler.GetMe)
				authGroup.PUT("/me", group.UserHandler.UpdateProfile)
				authGroup.PUT("/me/theme", group.UserHandler.UpdateTheme)
				authGroup.POST("/logout", group.UserHandler.Logout)
			}
		}

		notificationGroup := apiGroup.Group("/notifications")
		notificationGroup.Use(middleware.AuthMiddleware())
		{
			notificationGroup.GET("", group.NotificationHandler.List)
			notificationGroup.GET("/unread", group.NotificationHandler.GetUnreadCount)
			notificationGroup.POST("/read", group.NotificationHandler.MarkRead)
			notificationGroup.POST("/read/all", group.NotificationHandler.MarkAllRead)
			notificationGroup.DELETE("/:id", group.NotificationHandler.Delete)
		}

		// 角色在 service 层按数据库校验
		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.AuthMiddleware())
		{
			adminGroup.GET("/stats", group.AdminHandler.GetStats)
			adminGroup.GET("/users", group.AdminHandler.ListUsers)
			adminGroup.PUT("/users/:user_id/role", group.AdminHandler.UpdateRole)
			adminGroup.DELETE("/users/:user_id", group.AdminHandler.DeleteUser)
		}

		apiGroup.GET("/search", group.SearchHandler.Search)

		metricsGroup := apiGroup.Group("/metrics")
		metricsGroup.Use(middleware.AuthMiddleware())
		{
			metricsGroup.GET("/post/7d/:post_id", group.PostMetricHandler.GetMetrics7Days)
			metricsGroup.GET("/post/30d/:post_id", group.PostMetricHandler.GetMetrics30Days)
		}

		apiGroup.POST("/webhooks/identity", group.WebhookHandler.Identity)
	}

	return r
}

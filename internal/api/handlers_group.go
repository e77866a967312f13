package api

import "BrainScript/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	PostHandler         *handler.PostHandler
	EngagementHandler   *handler.EngagementHandler
	PresenceHandler     *handler.PresenceHandler
	WSHandler           *handler.WsHandler
	UserHandler         *handler.UserHandler
	AdminHandler        *handler.AdminHandler
	NotificationHandler *handler.NotificationHandler
	SearchHandler       *handler.SearchHandler
	PostMetricHandler   *handler.PostMetricHandler
	WebhookHandler      *handler.WebhookHandler
}

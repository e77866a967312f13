package handler

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/response"
	"BrainScript/internal/pkg/util"
	"BrainScript/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

const webhookSecretHeader = "X-Webhook-Secret"

// WebhookHandler 身份提供方推送用户创建与更新事件
type WebhookHandler struct {
	userSvc service.UserService
}

func NewWebhookHandler(userSvc service.UserService) *WebhookHandler {
	return &WebhookHandler{
		userSvc: userSvc,
	}
}

func (h *WebhookHandler) Identity(c *gin.Context) {
	if err := h.userSvc.VerifyWebhookSecret(c.GetHeader(webhookSecretHeader)); err != nil {
		response.Error(c, err)
		return
	}

	var evt dto.IdentityWebhookDTO
	if err := c.ShouldBindJSON(&evt); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&evt); err != nil {
		log.WarnContext(c.Request.Context(), "identity webhook rejected", "err", err)
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := h.userSvc.SyncFromProvider(c.Request.Context(), &evt); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

package handler

import (
	"BrainScript/internal/pkg/response"
	"BrainScript/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	presenceSvc service.PresenceService
}

func NewPresenceHandler(presenceSvc service.PresenceService) *PresenceHandler {
	return &PresenceHandler{
		presenceSvc: presenceSvc,
	}
}

// Heartbeat 尽力而为：写入失败只记日志，客户端始终收到成功
func (s *PresenceHandler) Heartbeat(c *gin.Context) {
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	identity := service.ResolveIdentity(c.GetUint64("user_id"), c.GetString("reader_session"))
	if err = s.presenceSvc.Heartbeat(c.Request.Context(), postID, identity); err != nil {
		log.WarnContext(c.Request.Context(), "presence heartbeat failed", "post_id", postID, "identity", identity.Kind(), "err", err)
	}
	response.Success(c, nil)
}

func (s *PresenceHandler) GetActiveReaders(c *gin.Context) {
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	readers, err := s.presenceSvc.GetActiveReaders(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, readers)
}

func (s *PresenceHandler) GetViewerCount(c *gin.Context) {
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	count, err := s.presenceSvc.GetViewerCount(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, count)
}

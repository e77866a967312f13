package middleware

import (
	"BrainScript/internal/pkg/consts"

	"github.com/gin-gonic/gin"
)

const ContextReaderSession = "reader_session"

// ReaderSessionMiddleware 提取匿名读者的会话令牌，合法性由在线状态服务判定
func ReaderSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.GetHeader(consts.ReaderSessionHeader)
		if session == "" {
			session = c.Query("session")
		}
		c.Set(ContextReaderSession, session)
		c.Next()
	}
}

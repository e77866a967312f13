package middleware

import (
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入 UID，失败或缺失则 UID 为 0
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, uint64(0))

		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, ok, err := authenticate(c, tokenString)
		if err != nil {
			log.WarnContext(c.Request.Context(), "optional auth degraded to anonymous", "err", err)
		}
		if ok {
			injectIdentity(c, tokenString, claims)
		}

		c.Next()
	}
}

package middleware

import (
	"BrainScript/internal/pkg/logger"
	"context"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const traceHeader = "X-Trace-ID"

// 上游传入的 trace_id 会进入日志和 Logstash 索引，只接受短的 URL 安全串
var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)

// TraceMiddleware 沿用网关传入的 trace_id，缺失或不合法时重新生成，并回写到响应头
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if !traceIDPattern.MatchString(traceID) {
			traceID = uuid.NewString()
		}

		c.Set(logger.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.TraceIDKey, traceID))
		c.Header(traceHeader, traceID)
		c.Next()
	}
}

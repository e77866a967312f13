package logger

import (
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const mongoSlowThreshold = 200 * time.Millisecond

// 驱动自身的握手与会话维护命令不记录
var mongoHousekeeping = map[string]struct{}{
	"hello":        {},
	"isMaster":     {},
	"ping":         {},
	"endSessions":  {},
	"saslStart":    {},
	"saslContinue": {},
}

// NewMongoMonitor 通知集合的命令日志，正常命令只在 Debug 级别输出
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			if _, skip := mongoHousekeeping[evt.CommandName]; skip {
				return
			}
			log.DebugContext(ctx, "mongo command started",
				log.String("command", evt.CommandName),
				log.String("database", evt.DatabaseName),
				log.Int64("request_id", evt.RequestID),
				log.String("detail", truncate(evt.Command.String(), bodyLogLimit)),
			)
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			if evt.Duration < mongoSlowThreshold {
				return
			}
			log.WarnContext(ctx, "mongo command slow",
				log.String("command", evt.CommandName),
				log.Int64("request_id", evt.RequestID),
				log.Duration("latency", evt.Duration),
			)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "mongo command failed",
				log.String("command", evt.CommandName),
				log.Int64("request_id", evt.RequestID),
				log.Duration("latency", evt.Duration),
				log.Any("err", evt.Failure),
			)
		},
	}
}

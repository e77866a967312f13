package logger

import (
	"BrainScript/internal/api/config"
	"io"
	log "log/slog"
	"net"
	"os"
	"time"
)

const serviceName = "brainscript"

// LogWriter gin 访问日志的输出目标，连上 Logstash 时与应用日志同路
var LogWriter io.Writer = os.Stdout

// InitLogger 标准输出始终保留，Logstash 接收带 trace_id 的记录与 Warn 以上的记录
func InitLogger() {
	opts := &log.HandlerOptions{Level: log.LevelInfo}
	var handler log.Handler = log.NewJSONHandler(os.Stdout, opts).
		WithAttrs([]log.Attr{log.String("service", serviceName)})

	cfg := config.Cfg.Logstash
	if cfg.Address != "" {
		conn, err := net.DialTimeout("tcp", cfg.Address, 3*time.Second)
		if err != nil {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "err", err)
		} else {
			remote := log.NewJSONHandler(conn, opts).WithAttrs([]log.Attr{
				log.String("service", serviceName),
				log.String("target_index", cfg.Index),
				log.String("log_token", cfg.Token),
			})
			handler = &TeeHandler{
				handlers: []log.Handler{handler, &RemoteFilterHandler{next: remote}},
			}
			LogWriter = conn
		}
	}

	log.SetDefault(log.New(&ContextHandler{handler}))
}

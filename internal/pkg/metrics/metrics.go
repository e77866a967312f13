package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brainscript_http_requests_total",
		Help: "HTTP 请求总数",
	}, []string{"method", "path", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "brainscript_http_request_duration_seconds",
		Help:    "HTTP 请求耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	presenceHeartbeatsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brainscript_presence_heartbeats_total",
		Help: "阅读心跳次数，按身份类型与结果区分",
	}, []string{"identity", "result"})

	presenceStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "brainscript_presence_streams",
		Help: "当前打开的在线读者 WebSocket 连接数",
	})

	engagementTogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brainscript_engagement_toggles_total",
		Help: "点赞与收藏切换次数",
	}, []string{"kind", "state"})

	readTimeFlushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brainscript_read_time_flushes_total",
		Help: "阅读时长上报次数",
	}, []string{"result"})

	readTimeFlushedMs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "brainscript_read_time_flushed_ms_total",
		Help: "累计上报的阅读时长（毫秒）",
	})

	rankingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "brainscript_ranking_build_seconds",
		Help:    "榜单计算耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"ranking"})

	consumerMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brainscript_consumer_messages_total",
		Help: "Canal 消息处理次数",
	}, []string{"table", "result"})

	jobRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brainscript_job_runs_total",
		Help: "定时任务执行次数",
	}, []string{"job", "result"})
)

// MustRegister 在给定的注册器上注册本包指标，只生效一次
func MustRegister(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		registerer.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			presenceHeartbeatsTotal,
			presenceStreams,
			engagementTogglesTotal,
			readTimeFlushesTotal,
			readTimeFlushedMs,
			rankingDuration,
			consumerMessagesTotal,
			jobRunsTotal,
		)
	})
}

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// GinMiddleware 记录请求数与耗时，path 使用路由模板避免基数爆炸
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func ObserveHeartbeat(identityKind string, err error) {
	presenceHeartbeatsTotal.WithLabelValues(identityKind, result(err)).Inc()
}

func PresenceStreamOpened() {
	presenceStreams.Inc()
}

func PresenceStreamClosed() {
	presenceStreams.Dec()
}

func ObserveToggle(kind string, active bool) {
	state := "off"
	if active {
		state = "on"
	}
	engagementTogglesTotal.WithLabelValues(kind, state).Inc()
}

func ObserveReadTimeFlush(durationMs int64, err error) {
	readTimeFlushesTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		readTimeFlushedMs.Add(float64(durationMs))
	}
}

func ObserveRanking(name string, start time.Time) {
	rankingDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

func ObserveConsumerMessage(table string, err error) {
	consumerMessagesTotal.WithLabelValues(table, result(err)).Inc()
}

func ObserveJobRun(job string, err error) {
	jobRunsTotal.WithLabelValues(job, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

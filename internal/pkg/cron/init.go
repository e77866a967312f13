package cron

import (
	log "log/slog"

	"github.com/pkg/errors"
)

// InitCron 注册热榜重建与帖子指标快照，然后启动引擎
// 注册失败时不启动任何任务
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return errors.Wrap(err, "register cron jobs")
	}
	log.Info("Cron jobs registered", "trending", trendingSpec, "post_metrics", postMetricsSpec, "entries", len(mgr.engine.Entries()))
	mgr.Start()
	return nil
}

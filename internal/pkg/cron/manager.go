package cron

import (
	"BrainScript/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const (
	trendingSpec    = "0 * * * * *"
	postMetricsSpec = "0 */10 * * * *"
)

type Manager struct {
	engine         *cron.Cron
	trendingJob    *job.TrendingJob
	postMetricsJob *job.PostMetricsJob
}

func NewCronManager(trendingJob *job.TrendingJob, postMetricsJob *job.PostMetricsJob) *Manager {
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		trendingJob:    trendingJob,
		postMetricsJob: postMetricsJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(trendingSpec, s.trendingJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(postMetricsSpec, s.postMetricsJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

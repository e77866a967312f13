package job

import (
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/logger"
	"BrainScript/internal/pkg/metrics"
	"BrainScript/internal/pkg/redis"
	"BrainScript/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// TrendingJob 定时重建热门榜缓存，多实例部署时靠分布式锁只让一个实例计算
type TrendingJob struct {
	rankingSvc service.RankingService
}

func NewTrendingJob(rankingSvc service.RankingService) *TrendingJob {
	return &TrendingJob{rankingSvc: rankingSvc}
}

func (s *TrendingJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-trending-")
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.RunContext(ctx)
	metrics.ObserveJobRun("trending", err)
}

// RunContext 没抢到锁时返回 false
func (s *TrendingJob) RunContext(ctx context.Context) (bool, error) {
	lockValue := uuid.NewString()
	ok, err := redis.TryLock(ctx, consts.TrendingRebuildLock, lockValue, 30*time.Second, 0)
	if err != nil {
		log.ErrorContext(ctx, "acquire trending lock error", "err", err)
		return false, err
	}
	if !ok {
		return false, nil
	}
	defer redis.UnLock(ctx, consts.TrendingRebuildLock, lockValue)

	posts, err := s.rankingSvc.RebuildTrending(ctx)
	if err != nil {
		log.ErrorContext(ctx, "rebuild trending error", "err", err)
		return true, err
	}
	log.InfoContext(ctx, "rebuild trending success", "post_count", len(posts))
	return true, nil
}

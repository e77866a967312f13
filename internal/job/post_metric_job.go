package job

import (
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/logger"
	"BrainScript/internal/pkg/metrics"
	"BrainScript/internal/pkg/redis"
	"BrainScript/internal/pkg/util"
	"BrainScript/internal/service"
	"context"
	log "log/slog"
	"strings"
)

const postDirtyProcessingKey = consts.PostDirtyKey + ":processing"

// PostMetricsJob 把有变动的帖子计数落成每日快照
type PostMetricsJob struct {
	postMetricSvc service.PostMetricService
}

func NewPostMetricsJob(postMetricSvc service.PostMetricService) *PostMetricsJob {
	return &PostMetricsJob{
		postMetricSvc: postMetricSvc,
	}
}

func (s *PostMetricsJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-post-")
	_, err := s.RunContext(ctx)
	metrics.ObserveJobRun("post_metrics", err)
}

// RunContext 返回本次处理的帖子数
func (s *PostMetricsJob) RunContext(ctx context.Context) (int, error) {
	// 上一轮失败遗留的 processing 集合优先处理，否则把脏集合整体改名接管
	tempSet, err := redis.GetSet(ctx, postDirtyProcessingKey)
	if err != nil {
		log.ErrorContext(ctx, "get post processing set error", "err", err)
		return 0, err
	}
	if len(tempSet) == 0 {
		if err = redis.Rename(ctx, consts.PostDirtyKey, postDirtyProcessingKey); err != nil {
			if strings.Contains(err.Error(), "no such key") {
				return 0, nil
			}
			log.ErrorContext(ctx, "rename post dirty set error", "err", err)
			return 0, err
		}
		if tempSet, err = redis.GetSet(ctx, postDirtyProcessingKey); err != nil {
			log.ErrorContext(ctx, "get post dirty set error", "err", err)
			return 0, err
		}
	}

	postIDs, err := util.StrSliceToUInt64Slice(tempSet)
	if err != nil {
		log.ErrorContext(ctx, "convert post set to int slice error", "err", err)
		_ = redis.DeleteKey(ctx, postDirtyProcessingKey)
		return 0, err
	}

	failed := 0
	for _, pid := range postIDs {
		if err = s.postMetricSvc.SyncPostMetric(ctx, pid); err != nil {
			failed++
			log.ErrorContext(ctx, "sync post daily metric error", "pid", pid, "err", err)
			// 失败的帖子放回脏集合，下一轮重试
			_ = redis.SAdd(ctx, consts.PostDirtyKey, pid)
		}
	}

	if err = redis.DeleteKey(ctx, postDirtyProcessingKey); err != nil {
		log.ErrorContext(ctx, "delete post processing set error", "err", err)
	}

	log.InfoContext(ctx, "sync post metrics success", "post_count", len(postIDs), "failed", failed)
	return len(postIDs), nil
}

package service

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/redis"
	"BrainScript/internal/pkg/util"
	"BrainScript/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

type PostMetricService interface {
	// SyncPostMetric 同步帖子每日指标快照
	SyncPostMetric(ctx context.Context, postID uint64) error
	// GetPostMetricsBy7Days 获取最近7天全维度趋势数据
	GetPostMetricsBy7Days(ctx context.Context, postID uint64, userID uint64) (*dto.PostTrendDTO, error)
	// GetPostMetricsBy30Days 获取最近30天全维度趋势数据
	GetPostMetricsBy30Days(ctx context.Context, postID uint64, userID uint64) (*dto.PostTrendDTO, error)
}

type postMetricServiceImpl struct {
	postMetricRepo repository.PostMetricRepo
	postRepo       repository.PostRepo
	now            func() time.Time
}

func NewPostMetricService(postMetricRepo repository.PostMetricRepo, postRepo repository.PostRepo) PostMetricService {
	return &postMetricServiceImpl{
		postMetricRepo: postMetricRepo,
		postRepo:       postRepo,
		now:            time.Now,
	}
}

// SyncPostMetric 将 posts 表的实时计数刷入当天的快照，帖子已删除时跳过
func (s *postMetricServiceImpl) SyncPostMetric(ctx context.Context, postID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return nil
	}

	metric := &model.PostDailyMetric{
		PostID:          postID,
		MetricDate:      util.GetMidnight(s.now()),
		TotalViews:      post.Views,
		TotalLikes:      post.LikesCount,
		TotalComments:   post.CommentsCount,
		TotalSaves:      post.SavesCount,
		TotalReadTimeMs: post.TotalReadTimeMs,
	}
	if err = s.postMetricRepo.SaveOrUpdateMetric(ctx, metric); err != nil {
		return err
	}

	id := strconv.FormatUint(postID, 10)
	_ = redis.DeleteKey(ctx, consts.PostMetrics7Days+id, consts.PostMetrics30Days+id)
	return nil
}

func (s *postMetricServiceImpl) GetPostMetricsBy7Days(ctx context.Context, postID uint64, userID uint64) (*dto.PostTrendDTO, error) {
	return s.getPostMetrics(ctx, postID, userID, consts.PostMetrics7Days, 7)
}

func (s *postMetricServiceImpl) GetPostMetricsBy30Days(ctx context.Context, postID uint64, userID uint64) (*dto.PostTrendDTO, error) {
	return s.getPostMetrics(ctx, postID, userID, consts.PostMetrics30Days, 30)
}

// getPostMetrics 聚合查询与数据平滑逻辑，缺失的日期沿用前一天的累计值
func (s *postMetricServiceImpl) getPostMetrics(ctx context.Context, postID, userID uint64, keyPrefix string, days int) (*dto.PostTrendDTO, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, UnauthorizedError
	}

	key := keyPrefix + strconv.FormatUint(postID, 10)
	var cached dto.PostTrendDTO
	if hit, err := redis.GetJSON(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	now := s.now()
	startTime := util.GetMidnight(now).AddDate(0, 0, -(days - 1))
	rawData, err := s.postMetricRepo.GetPostMetricsSince(ctx, postID, startTime)
	if err != nil {
		return nil, err
	}

	var baseline *model.PostDailyMetric
	if len(rawData) == 0 || !rawData[0].MetricDate.Equal(startTime) {
		baseline, err = s.postMetricRepo.GetLatestMetricBefore(ctx, postID, startTime)
		if err != nil {
			log.WarnContext(ctx, "load metric baseline failed", "post_id", postID, "err", err)
		}
	}

	dataMap := make(map[string]*model.PostDailyMetric, len(rawData))
	for _, m := range rawData {
		dataMap[m.MetricDate.Format(time.DateOnly)] = m
	}

	res := &dto.PostTrendDTO{
		PostID:   postID,
		Days:     days,
		Views:    make([]*dto.PostMetricDTO, 0, days),
		Likes:    make([]*dto.PostMetricDTO, 0, days),
		Comments: make([]*dto.PostMetricDTO, 0, days),
		Saves:    make([]*dto.PostMetricDTO, 0, days),
		ReadTime: make([]*dto.PostMetricDTO, 0, days),
	}

	lastValid := baseline
	for i := days - 1; i >= 0; i-- {
		dateStr := util.GetMidnight(now.AddDate(0, 0, -i)).Format(time.DateOnly)
		if val, ok := dataMap[dateStr]; ok {
			lastValid = val
		}
		var v, l, c, sv, rt int64
		if lastValid != nil {
			v, l, c, sv, rt = lastValid.TotalViews, lastValid.TotalLikes, lastValid.TotalComments, lastValid.TotalSaves, lastValid.TotalReadTimeMs
		}
		res.Views = append(res.Views, &dto.PostMetricDTO{Date: dateStr, Value: v})
		res.Likes = append(res.Likes, &dto.PostMetricDTO{Date: dateStr, Value: l})
		res.Comments = append(res.Comments, &dto.PostMetricDTO{Date: dateStr, Value: c})
		res.Saves = append(res.Saves, &dto.PostMetricDTO{Date: dateStr, Value: sv})
		res.ReadTime = append(res.ReadTime, &dto.PostMetricDTO{Date: dateStr, Value: rt})
	}

	// 快照每天更新，缓存到次日零点失效
	ttl := util.GetMidnight(now).AddDate(0, 0, 1).Sub(now)
	_ = redis.SetJSON(ctx, key, res, ttl)
	return res, nil
}

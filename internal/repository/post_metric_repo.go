package repository

import (
	"BrainScript/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostMetricRepo interface {
	SaveOrUpdateMetric(ctx context.Context, metric *model.PostDailyMetric) error
	GetPostMetricsSince(ctx context.Context, postID uint64, since time.Time) ([]*model.PostDailyMetric, error)
	GetLatestMetricBefore(ctx context.Context, postID uint64, date time.Time) (*model.PostDailyMetric, error)
}

type postMetricRepoImpl struct {
	db *gorm.DB
}

func NewPostMetricRepository(db *gorm.DB) PostMetricRepo {
	return &postMetricRepoImpl{db: db}
}

// SaveOrUpdateMetric 采用 Upsert 逻辑。如果 post_id + metric_date 已存在，则更新各项数值
func (r *postMetricRepoImpl) SaveOrUpdateMetric(ctx context.Context, metric *model.PostDailyMetric) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "post_id"}, {Name: "metric_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_views",
			"total_likes",
			"total_comments",
			"total_saves",
			"total_read_time_ms",
		}),
	}).Create(metric).Error
}

// GetPostMetricsSince 获取帖子自 since 起的快照，按日期升序
func (r *postMetricRepoImpl) GetPostMetricsSince(ctx context.Context, postID uint64, since time.Time) ([]*model.PostDailyMetric, error) {
	metrics := make([]*model.PostDailyMetric, 0)
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND metric_date >= ?", postID, since).
		Order("metric_date ASC").
		Find(&metrics)
	if result.Error != nil {
		return nil, result.Error
	}
	return metrics, nil
}

// GetLatestMetricBefore 获取指定日期前最近的一条快照，用作补齐的基线
func (r *postMetricRepoImpl) GetLatestMetricBefore(ctx context.Context, postID uint64, date time.Time) (*model.PostDailyMetric, error) {
	var metric model.PostDailyMetric
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND metric_date < ?", postID, date).
		Order("metric_date DESC").
		First(&metric).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &metric, nil
}

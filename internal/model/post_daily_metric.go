package model

import (
	"time"
)

// PostDailyMetric 帖子每日累计快照
type PostDailyMetric struct {
	ID              uint64    `gorm:"primaryKey"`
	PostID          uint64    `gorm:"not null;uniqueIndex:idx_post_metrics_post_date,priority:1" json:"postId"`
	MetricDate      time.Time `gorm:"not null;uniqueIndex:idx_post_metrics_post_date,priority:2;column:metric_date" json:"metricDate"`
	TotalViews      int64     `gorm:"not null;default:0" json:"totalViews"`
	TotalLikes      int64     `gorm:"not null;default:0" json:"totalLikes"`
	TotalComments   int64     `gorm:"not null;default:0" json:"totalComments"`
	TotalSaves      int64     `gorm:"not null;default:0" json:"totalSaves"`
	TotalReadTimeMs int64     `gorm:"not null;default:0" json:"totalReadTimeMs"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (PostDailyMetric) TableName() string {
	return "post_daily_metrics"
}

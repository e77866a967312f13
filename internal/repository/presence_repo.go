package repository

import (
	"BrainScript/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PresenceRepo interface {
	Upsert(ctx context.Context, presence *model.Presence) error
	FindActive(ctx context.Context, postID uint64, sinceMs int64, limit int) ([]*model.Presence, error)
	CountActive(ctx context.Context, postID uint64, sinceMs int64) (int64, error)
}

type presenceRepoImpl struct {
	db *gorm.DB
}

func NewPresenceRepo(db *gorm.DB) PresenceRepo {
	return &presenceRepoImpl{db: db}
}

// Upsert 以 (post_id, identity) 为键刷新心跳时间
func (r *presenceRepoImpl) Upsert(ctx context.Context, presence *model.Presence) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "updated_at"}),
	}).Create(presence).Error
}

// FindActive 返回 sinceMs 之后有心跳的记录，最近的在前
func (r *presenceRepoImpl) FindActive(ctx context.Context, postID uint64, sinceMs int64, limit int) ([]*model.Presence, error) {
	rows := make([]*model.Presence, 0)
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND updated_at > ?", postID, sinceMs).
		Order("updated_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *presenceRepoImpl) CountActive(ctx context.Context, postID uint64, sinceMs int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Presence{}).
		Where("post_id = ? AND updated_at > ?", postID, sinceMs).
		Count(&count).Error
	return count, err
}

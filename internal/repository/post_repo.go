package repository

import (
	"BrainScript/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// AuthorTotals 作者维度的累计数据，直接由反范式计数求和得到
type AuthorTotals struct {
	Posts      int64
	Views      int64
	Likes      int64
	Comments   int64
	Saves      int64
	ReadTimeMs int64
}

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error)
	ExistsSlug(ctx context.Context, slug string, excludeID uint64) (bool, error)
	UpdatePost(ctx context.Context, id uint64, fields map[string]interface{}) error
	DeletePostCascade(ctx context.Context, id uint64) error

	ListRecent(ctx context.Context, limit int) ([]*model.Post, error)
	ListCreatedAfter(ctx context.Context, since time.Time) ([]*model.Post, error)
	ListPopular(ctx context.Context, limit int) ([]*model.Post, error)
	ListByAuthor(ctx context.Context, userID uint64, publishedOnly bool, limit int) ([]*model.Post, error)
	ListCategories(ctx context.Context) ([]string, error)
	SumByAuthor(ctx context.Context, userID uint64, publishedOnly bool) (*AuthorTotals, error)
	CountPosts(ctx context.Context) (int64, error)

	IncrementViews(ctx context.Context, id uint64) error
	AddReadTime(ctx context.Context, id uint64, durationMs int64) error
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostRepoImpl) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Preload("User").Where("slug = ?", slug).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostRepoImpl) GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	if len(ids) == 0 {
		return posts, nil
	}
	err := s.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostRepoImpl) ExistsSlug(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&model.Post{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (s *PostRepoImpl) UpdatePost(ctx context.Context, id uint64, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return s.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

// DeletePostCascade 在同一事务内删除帖子及其评论、点赞、收藏、在线记录与每日指标
func (s *PostRepoImpl) DeletePostCascade(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&model.Comment{},
			&model.Like{},
			&model.Save{},
			&model.Presence{},
			&model.PostDailyMetric{},
		}
		for _, child := range children {
			if err := tx.Where("post_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&model.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (s *PostRepoImpl) ListRecent(ctx context.Context, limit int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	err := s.db.WithContext(ctx).Preload("User").
		Where("published = ?", true).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ListCreatedAfter 按创建时间倒序返回窗口内已发布的帖子
func (s *PostRepoImpl) ListCreatedAfter(ctx context.Context, since time.Time) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	err := s.db.WithContext(ctx).Preload("User").
		Where("published = ? AND created_at >= ?", true, since).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) ListPopular(ctx context.Context, limit int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	err := s.db.WithContext(ctx).Preload("User").
		Where("published = ?", true).
		Order("views DESC").Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) ListByAuthor(ctx context.Context, userID uint64, publishedOnly bool, limit int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("created_at DESC").Order("id DESC").Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) ListCategories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("category <> ?", "").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (s *PostRepoImpl) SumByAuthor(ctx context.Context, userID uint64, publishedOnly bool) (*AuthorTotals, error) {
	var totals AuthorTotals
	query := s.db.WithContext(ctx).Model(&model.Post{}).
		Select("COUNT(*) AS posts, " +
			"COALESCE(SUM(views), 0) AS views, " +
			"COALESCE(SUM(likes_count), 0) AS likes, " +
			"COALESCE(SUM(comments_count), 0) AS comments, " +
			"COALESCE(SUM(saves_count), 0) AS saves, " +
			"COALESCE(SUM(total_read_time_ms), 0) AS read_time_ms").
		Where("user_id = ?", userID)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}

func (s *PostRepoImpl) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Post{}).Count(&count).Error
	return count, err
}

func (s *PostRepoImpl) IncrementViews(ctx context.Context, id uint64) error {
	return s.incrementColumn(ctx, id, "views", 1)
}

func (s *PostRepoImpl) AddReadTime(ctx context.Context, id uint64, durationMs int64) error {
	return s.incrementColumn(ctx, id, "total_read_time_ms", durationMs)
}

func (s *PostRepoImpl) incrementColumn(ctx context.Context, id uint64, column string, delta int64) error {
	result := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repository

import (
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/database"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	likesCountColumn    = "likes_count"
	savesCountColumn    = "saves_count"
	commentsCountColumn = "comments_count"
)

// EngagementRepo 点赞、收藏、评论，以及它们在 posts 上的反范式计数
// 行的增删与计数的调整总在同一事务中完成
type EngagementRepo interface {
	ToggleLike(ctx context.Context, userID, postID uint64) (bool, error)
	CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error)
	CountLikes(ctx context.Context, postID uint64) (int64, error)

	ToggleSave(ctx context.Context, userID, postID uint64) (bool, error)
	CheckSaveExists(ctx context.Context, userID, postID uint64) (bool, error)
	GetSavedPostIDs(ctx context.Context, userID uint64) ([]uint64, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	UpdateCommentContent(ctx context.Context, commentID uint64, content string) error
	DeleteComment(ctx context.Context, comment *model.Comment) error
	ListCommentsByPost(ctx context.Context, postID uint64) ([]*model.Comment, error)
	CountComments(ctx context.Context, postID uint64) (int64, error)
}

type EngagementRepoImpl struct {
	db *gorm.DB
}

func NewEngagementRepo(db *gorm.DB) EngagementRepo {
	return &EngagementRepoImpl{db}
}

// ToggleLike 已点赞则取消，否则点赞；返回操作后的状态
func (s *EngagementRepoImpl) ToggleLike(ctx context.Context, userID, postID uint64) (bool, error) {
	return s.toggle(ctx, &model.Like{}, likesCountColumn, userID, postID, func() interface{} {
		return &model.Like{UserID: userID, PostID: postID, CreatedAt: time.Now()}
	})
}

func (s *EngagementRepoImpl) CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *EngagementRepoImpl) CountLikes(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (s *EngagementRepoImpl) ToggleSave(ctx context.Context, userID, postID uint64) (bool, error) {
	return s.toggle(ctx, &model.Save{}, savesCountColumn, userID, postID, func() interface{} {
		return &model.Save{UserID: userID, PostID: postID, CreatedAt: time.Now()}
	})
}

func (s *EngagementRepoImpl) CheckSaveExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Save{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *EngagementRepoImpl) GetSavedPostIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	postIDs := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.Save{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Pluck("post_id", &postIDs).Error
	return postIDs, err
}

func (s *EngagementRepoImpl) CreateComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return adjustCounter(tx, comment.PostID, commentsCountColumn, 1)
	})
}

func (s *EngagementRepoImpl) GetCommentByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (s *EngagementRepoImpl) UpdateCommentContent(ctx context.Context, commentID uint64, content string) error {
	return s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", commentID).
		Updates(map[string]interface{}{"content": content, "updated_at": time.Now()}).Error
}

// DeleteComment 只有真正删掉一行时才回退计数
func (s *EngagementRepoImpl) DeleteComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Comment{}, comment.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return adjustCounter(tx, comment.PostID, commentsCountColumn, -1)
	})
}

func (s *EngagementRepoImpl) ListCommentsByPost(ctx context.Context, postID uint64) ([]*model.Comment, error) {
	comments := make([]*model.Comment, 0)
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	return comments, err
}

func (s *EngagementRepoImpl) CountComments(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// toggleAttempts 死锁回滚后整个切换最多执行的次数
const toggleAttempts = 2

// toggle 先锁住帖子行，同一帖子上的切换因此串行；随后先插入，已存在则删除
// 帖子不存在时返回 gorm.ErrRecordNotFound
func (s *EngagementRepoImpl) toggle(ctx context.Context, target interface{}, column string, userID, postID uint64, newRow func() interface{}) (bool, error) {
	active := false
	err := database.RetryTx(toggleAttempts, func() error {
		active = false
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var post model.Post
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").Where("id = ?", postID).Take(&post).Error; err != nil {
				return err
			}

			inserted := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(newRow())
			if inserted.Error != nil {
				return inserted.Error
			}
			if inserted.RowsAffected > 0 {
				active = true
				return adjustCounter(tx, postID, column, 1)
			}

			deleted := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(target)
			if deleted.Error != nil {
				return deleted.Error
			}
			if deleted.RowsAffected == 0 {
				return nil
			}
			return adjustCounter(tx, postID, column, -1)
		})
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

// adjustCounter 计数不会被减到负数
func adjustCounter(tx *gorm.DB, postID uint64, column string, delta int) error {
	expr := gorm.Expr(column + " + 1")
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN " + column + " > 0 THEN " + column + " - 1 ELSE 0 END")
	}
	return tx.Model(&model.Post{}).Where("id = ?", postID).UpdateColumn(column, expr).Error
}

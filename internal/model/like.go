package model

import (
	"time"
)

// Like 同一用户对同一帖子至多一条
type Like struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_likes_user_post,priority:1" json:"userId"`
	PostID    uint64    `gorm:"not null;uniqueIndex:idx_likes_user_post,priority:2;index:idx_likes_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}

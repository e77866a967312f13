package model

import (
	"time"
)

type Save struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_saves_user_post,priority:1" json:"userId"`
	PostID    uint64    `gorm:"not null;uniqueIndex:idx_saves_user_post,priority:2;index:idx_saves_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Save) TableName() string {
	return "saves"
}

package model

import (
	"time"
)

type Post struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	UserID          uint64    `gorm:"not null;index:idx_posts_user_id" json:"userId"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	Slug            string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_posts_slug" json:"slug"`
	Content         string    `gorm:"type:longtext;not null" json:"content"`
	Excerpt         string    `gorm:"type:varchar(1000);not null;default:''" json:"excerpt"`
	CoverImage      string    `gorm:"type:varchar(512);not null;default:''" json:"coverImage"`
	Published       bool      `gorm:"type:tinyint(1);not null;default:0" json:"published"`
	Category        string    `gorm:"type:varchar(100);not null;default:'';index:idx_posts_category" json:"category"`
	Tags            []string  `gorm:"type:json;serializer:json" json:"tags"`
	PostType        string    `gorm:"type:varchar(20);not null;default:'article'" json:"postType"`
	ProblemNumber   int       `gorm:"not null;default:0" json:"problemNumber"`
	ProblemName     string    `gorm:"type:varchar(255);not null;default:''" json:"problemName"`
	Difficulty      string    `gorm:"type:varchar(20);not null;default:''" json:"difficulty"`
	LeetcodeURL     string    `gorm:"type:varchar(512);not null;default:''" json:"leetcodeUrl"`
	TimeComplexity  string    `gorm:"type:varchar(50);not null;default:''" json:"timeComplexity"`
	SpaceComplexity string    `gorm:"type:varchar(50);not null;default:''" json:"spaceComplexity"`
	Views           int64     `gorm:"not null;default:0" json:"views"`
	LikesCount      int64     `gorm:"not null;default:0" json:"likesCount"`
	CommentsCount   int64     `gorm:"not null;default:0" json:"commentsCount"`
	SavesCount      int64     `gorm:"not null;default:0" json:"savesCount"`
	TotalReadTimeMs int64     `gorm:"not null;default:0" json:"totalReadTimeMs"`
	CreatedAt       time.Time `gorm:"index:idx_posts_created_at" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// 关联关系
	User User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

package es

import "time"

// PostES 对应 post_index 的文档结构
type PostES struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content,omitempty"`
	Excerpt    string    `json:"excerpt"`
	CoverImage string    `json:"cover_image"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	PostType   string    `json:"post_type"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserES 对应 user_index 的文档结构
type UserES struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

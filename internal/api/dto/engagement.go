package dto

// ToggleResultDTO 点赞或收藏切换后的状态
type ToggleResultDTO struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

// CommentCreateDTO 创建评论请求
type CommentCreateDTO struct {
	PostID  uint64 `json:"postId" binding:"required"`
	Content string `json:"content" binding:"required,max=5000"`
}

// CommentUpdateDTO 修改评论请求
type CommentUpdateDTO struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// CommentDTO 评论详情
type CommentDTO struct {
	ID        uint64     `json:"id"`
	PostID    uint64     `json:"postId"`
	Content   string     `json:"content"`
	CreatedAt int64      `json:"createdAt"`
	UpdatedAt int64      `json:"updatedAt"`
	Author    *AuthorDTO `json:"author"`
}

package dto

// AuthorDTO 帖子、评论、读者上的作者摘要
type AuthorDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// CreatePostDTO 创建帖子请求
type CreatePostDTO struct {
	Title           string   `json:"title" binding:"required,max=255"`
	Slug            string   `json:"slug" binding:"required,max=255"`
	Content         string   `json:"content" binding:"required"`
	Excerpt         string   `json:"excerpt" binding:"max=1000"`
	CoverImage      string   `json:"coverImage" binding:"omitempty,url,max=512"`
	Published       *bool    `json:"published"`
	Category        string   `json:"category" binding:"max=100"`
	Tags            []string `json:"tags" binding:"max=20,dive,max=50"`
	PostType        string   `json:"postType" binding:"omitempty,oneof=article dsa"`
	ProblemNumber   int      `json:"problemNumber" binding:"min=0"`
	ProblemName     string   `json:"problemName" binding:"max=255"`
	Difficulty      string   `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	LeetcodeURL     string   `json:"leetcodeUrl" binding:"omitempty,url,max=512"`
	TimeComplexity  string   `json:"timeComplexity" binding:"max=50"`
	SpaceComplexity string   `json:"spaceComplexity" binding:"max=50"`
}

// UpdatePostDTO 更新帖子请求，空字段保持不变
type UpdatePostDTO struct {
	Title      *string  `json:"title" binding:"omitempty,max=255"`
	Slug       *string  `json:"slug" binding:"omitempty,max=255"`
	Content    *string  `json:"content"`
	Excerpt    *string  `json:"excerpt" binding:"omitempty,max=1000"`
	CoverImage *string  `json:"coverImage" binding:"omitempty,max=512"`
	Published  *bool    `json:"published"`
	Category   *string  `json:"category" binding:"omitempty,max=100"`
	Tags       []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// PostDTO 帖子详情
type PostDTO struct {
	ID              uint64     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content,omitempty"`
	Excerpt         string     `json:"excerpt"`
	CoverImage      string     `json:"coverImage"`
	Published       bool       `json:"published"`
	Category        string     `json:"category"`
	Tags            []string   `json:"tags"`
	PostType        string     `json:"postType"`
	ProblemNumber   int        `json:"problemNumber,omitempty"`
	ProblemName     string     `json:"problemName,omitempty"`
	Difficulty      string     `json:"difficulty,omitempty"`
	LeetcodeURL     string     `json:"leetcodeUrl,omitempty"`
	TimeComplexity  string     `json:"timeComplexity,omitempty"`
	SpaceComplexity string     `json:"spaceComplexity,omitempty"`
	Views           int64      `json:"views"`
	LikesCount      int64      `json:"likesCount"`
	CommentsCount   int64      `json:"commentsCount"`
	SavesCount      int64      `json:"savesCount"`
	TotalReadTimeMs int64      `json:"totalReadTimeMs"`
	CreatedAt       int64      `json:"createdAt"` // unix ms
	Author          *AuthorDTO `json:"author"`
}

// PostStateDTO 帖子详情页的互动状态
type PostStateDTO struct {
	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
	SaveCount    int64 `json:"saveCount"`
	ViewCount    int64 `json:"viewCount"`
	ViewerCount  int64 `json:"viewerCount"`
	IsLiked      bool  `json:"isLiked"`
	IsSaved      bool  `json:"isSaved"`
}

// ReadTimeDTO 阅读时长上报
type ReadTimeDTO struct {
	DurationMs int64 `json:"durationMs" binding:"required,gt=0"`
}

// CheckTitleDTO 标题可用性
type CheckTitleDTO struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

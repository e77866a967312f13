package dto

// PostMetricDTO 帖子指标趋势点
type PostMetricDTO struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// PostTrendDTO 帖子趋势返回包装
type PostTrendDTO struct {
	PostID   uint64           `json:"postId"`
	Days     int              `json:"days"` // 7 或 30
	Views    []*PostMetricDTO `json:"views"`
	Likes    []*PostMetricDTO `json:"likes"`
	Comments []*PostMetricDTO `json:"comments"`
	Saves    []*PostMetricDTO `json:"saves"`
	ReadTime []*PostMetricDTO `json:"readTime"`
}

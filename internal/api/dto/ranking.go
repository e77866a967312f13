package dto

// TrendingPostDTO 热门帖子，附带计算出的分数
type TrendingPostDTO struct {
	PostDTO
	Score int64 `json:"score"`
}

// TopWriterDTO 作者榜单条目
type TopWriterDTO struct {
	Author       *AuthorDTO `json:"author"`
	Passion      string     `json:"passion"`
	Organization string     `json:"organization"`
	Posts        int64      `json:"posts"`
	Views        int64      `json:"views"`
	Comments     int64      `json:"comments"`
}

// AdminStatsDTO 管理后台概览
type AdminStatsDTO struct {
	TotalUsers   int64 `json:"totalUsers"`
	AdminUsers   int64 `json:"adminUsers"`
	RegularUsers int64 `json:"regularUsers"`
	TotalPosts   int64 `json:"totalPosts"`
}

// AuthorStatsDTO 作者的累计数据
type AuthorStatsDTO struct {
	TotalPosts      int64 `json:"totalPosts"`
	TotalViews      int64 `json:"totalViews"`
	TotalLikes      int64 `json:"totalLikes"`
	TotalComments   int64 `json:"totalComments"`
	TotalSaves      int64 `json:"totalSaves"`
	TotalReadTimeMs int64 `json:"totalReadTimeMs"`
}

// PublicProfileDTO 公开主页
type PublicProfileDTO struct {
	User        *UserDTO        `json:"user"`
	Stats       *AuthorStatsDTO `json:"stats"`
	RecentPosts []*PostDTO      `json:"recentPosts"`
}

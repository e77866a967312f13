package dto

// SearchResultDTO 全站搜索结果
type SearchResultDTO struct {
	Posts []*SearchPostDTO `json:"posts"`
	Users []*SearchUserDTO `json:"users"`
}

type SearchPostDTO struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
}

type SearchUserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

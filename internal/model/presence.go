package model

// Presence 某个身份最近一次在帖子上的心跳，过期后只被过滤不会被删除
type Presence struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	PostID    uint64 `gorm:"not null;uniqueIndex:idx_presences_post_identity,priority:1;index:idx_presences_post_updated,priority:1" json:"postId"`
	UserID    uint64 `gorm:"not null;default:0" json:"userId"` // 0 表示匿名
	Identity  string `gorm:"type:varchar(100);not null;uniqueIndex:idx_presences_post_identity,priority:2" json:"identity"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false;index:idx_presences_post_updated,priority:2" json:"updatedAt"` // unix ms
}

func (Presence) TableName() string {
	return "presences"
}

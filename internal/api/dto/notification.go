package dto

// NotificationDTO 通知详情，补全了发送者与帖子信息
type NotificationDTO struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	SenderID    uint64 `json:"senderId"`
	SenderName  string `json:"senderName"`
	SenderImage string `json:"senderImage"`
	PostID      uint64 `json:"postId"`
	PostTitle   string `json:"postTitle"`
	PostSlug    string `json:"postSlug"`
	Content     string `json:"content"`
	IsRead      bool   `json:"isRead"`
	CreatedAt   int64  `json:"createdAt"`
}

// UnreadCountDTO 未读数
type UnreadCountDTO struct {
	UnreadCount int64 `json:"unreadCount"`
}

// NotificationIDDTO 单条通知操作
type NotificationIDDTO struct {
	ID string `json:"id" binding:"required,len=24,hexadecimal"`
}

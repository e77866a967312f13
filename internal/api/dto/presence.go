package dto

// ReaderDTO 正在阅读的读者
type ReaderDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	LastSeen int64  `json:"lastSeen"` // unix ms
}

// PresenceFrame WebSocket 下行帧
type PresenceFrame struct {
	Type        string       `json:"type"` // readers
	PostID      uint64       `json:"postId"`
	Readers     []*ReaderDTO `json:"readers"`
	ViewerCount int64        `json:"viewerCount"`
}

// PresenceClientFrame WebSocket 上行帧
type PresenceClientFrame struct {
	Type    string `json:"type"` // visibility
	Visible bool   `json:"visible"`
}

package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationModel 互动通知
type NotificationModel struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiverID uint64             `bson:"receiver_id" json:"receiverId"` // 帖子作者
	SenderID   uint64             `bson:"sender_id" json:"senderId"`     // 点赞或评论的人
	Kind       string             `bson:"kind" json:"kind"`              // like | comment
	PostID     uint64             `bson:"post_id" json:"postId"`
	Content    string             `bson:"content" json:"content"` // 评论片段
	IsRead     bool               `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}

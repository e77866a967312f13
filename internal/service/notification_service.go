package service

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/mongo"
	"BrainScript/internal/repository"
	"context"
	log "log/slog"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	notificationListLimit  = 50
	notificationSnippetLen = 140
)

type NotificationService interface {
	// Notify 给帖子作者发送互动通知，自己给自己的互动不通知
	Notify(ctx context.Context, receiverID, senderID uint64, kind string, postID uint64, content string)
	List(ctx context.Context, userID uint64) ([]*dto.NotificationDTO, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkAsRead(ctx context.Context, userID uint64, id string) error
	MarkAllAsRead(ctx context.Context, userID uint64) error
	Delete(ctx context.Context, userID uint64, id string) error
	DeleteByPost(ctx context.Context, postID uint64) error
}

type notificationServiceImpl struct {
	notificationRepo mongo.NotificationRepo
	userRepo         repository.UserRepo
	postRepo         repository.PostRepo
}

func NewNotificationService(notificationRepo mongo.NotificationRepo, userRepo repository.UserRepo, postRepo repository.PostRepo) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		postRepo:         postRepo,
	}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, receiverID, senderID uint64, kind string, postID uint64, content string) {
	if receiverID == 0 || receiverID == senderID {
		return
	}
	msg := &mongo.NotificationModel{
		ReceiverID: receiverID,
		SenderID:   senderID,
		Kind:       kind,
		PostID:     postID,
		Content:    snippet(content),
		CreatedAt:  time.Now(),
	}
	if err := s.notificationRepo.CreateNotification(ctx, msg); err != nil {
		log.ErrorContext(ctx, "create notification failed", "kind", kind, "post_id", postID, "err", err)
	}
}

func snippet(content string) string {
	if utf8.RuneCountInString(content) <= notificationSnippetLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:notificationSnippetLen]) + "..."
}

func (s *notificationServiceImpl) List(ctx context.Context, userID uint64) ([]*dto.NotificationDTO, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	list, err := s.notificationRepo.GetNotificationList(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]uint64, 0, len(list))
	postIDs := make([]uint64, 0, len(list))
	for _, n := range list {
		senderIDs = append(senderIDs, n.SenderID)
		postIDs = append(postIDs, n.PostID)
	}
	users, err := s.userRepo.GetUserByIds(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetPostByIds(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uint64]*model.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}
	postMap := make(map[uint64]*model.Post, len(posts))
	for _, p := range posts {
		postMap[p.ID] = p
	}

	out := make([]*dto.NotificationDTO, 0, len(list))
	for _, n := range list {
		item := &dto.NotificationDTO{
			ID:         n.ID.Hex(),
			Kind:       n.Kind,
			SenderID:   n.SenderID,
			SenderName: consts.UnknownUserName,
			PostID:     n.PostID,
			PostTitle:  consts.DeletedPostTitle,
			Content:    n.Content,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt.UnixMilli(),
		}
		if u, ok := userMap[n.SenderID]; ok {
			item.SenderName = u.Name
			item.SenderImage = u.Image
		}
		if p, ok := postMap[n.PostID]; ok {
			item.PostTitle = p.Title
			item.PostSlug = p.Slug
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	return s.notificationRepo.GetUnreadCount(ctx, userID)
}

// owned 加载通知并校验接收人
func (s *notificationServiceImpl) owned(ctx context.Context, userID uint64, id string) (*mongo.NotificationModel, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrParamInvalid
	}
	msg, err := s.notificationRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrNotificationNotFound
	}
	if msg.ReceiverID != userID {
		return nil, UnauthorizedError
	}
	return msg, nil
}

func (s *notificationServiceImpl) MarkAsRead(ctx context.Context, userID uint64, id string) error {
	msg, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if msg.IsRead {
		return nil
	}
	return s.notificationRepo.MarkAsRead(ctx, msg.ID)
}

func (s *notificationServiceImpl) MarkAllAsRead(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}

func (s *notificationServiceImpl) Delete(ctx context.Context, userID uint64, id string) error {
	msg, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, msg.ID)
}

func (s *notificationServiceImpl) DeleteByPost(ctx context.Context, postID uint64) error {
	return s.notificationRepo.DeleteByPost(ctx, postID)
}

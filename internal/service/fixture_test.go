package service

import (
	"BrainScript/internal/api/config"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/mongo"
	"BrainScript/internal/pkg/testutil"
	"BrainScript/internal/repository"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// memNotificationRepo 通知存储的内存实现
type memNotificationRepo struct {
	mu    sync.Mutex
	items []*mongo.NotificationModel
}

func (r *memNotificationRepo) CreateNotification(_ context.Context, msg *mongo.NotificationModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	r.items = append(r.items, msg)
	return nil
}

func (r *memNotificationRepo) GetNotificationList(_ context.Context, userID uint64, limit int64) ([]*mongo.NotificationModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mongo.NotificationModel, 0)
	for i := len(r.items) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if r.items[i].ReceiverID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *memNotificationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*mongo.NotificationModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, nil
}

func (r *memNotificationRepo) MarkAsRead(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			item.IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) MarkAllAsRead(_ context.Context, userID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ReceiverID == userID {
			item.IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) GetUnreadCount(_ context.Context, userID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, item := range r.items {
		if item.ReceiverID == userID && !item.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.remove(func(item *mongo.NotificationModel) bool { return item.ID == id })
}

func (r *memNotificationRepo) DeleteByPost(_ context.Context, postID uint64) error {
	return r.remove(func(item *mongo.NotificationModel) bool { return item.PostID == postID })
}

func (r *memNotificationRepo) remove(match func(*mongo.NotificationModel) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, item := range r.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *memNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type fixture struct {
	db             *gorm.DB
	redis          *miniredis.Miniredis
	postRepo       repository.PostRepo
	userRepo       repository.UserRepo
	engagementRepo repository.EngagementRepo
	presenceRepo   repository.PresenceRepo
	notifications  *memNotificationRepo
	notificationSv NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:             db,
		redis:          testutil.NewRedis(t),
		postRepo:       repository.NewPostRepository(db),
		userRepo:       repository.NewUserRepo(db),
		engagementRepo: repository.NewEngagementRepo(db),
		presenceRepo:   repository.NewPresenceRepo(db),
		notifications:  &memNotificationRepo{},
	}
	f.notificationSv = NewNotificationService(f.notifications, f.userRepo, f.postRepo)
	return f
}

func (f *fixture) user(t *testing.T, email, role string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: email[:len(email)-len("@example.com")], Role: role}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

type postCounts struct {
	views, likes, comments int64
}

func (f *fixture) post(t *testing.T, authorID uint64, slug string, createdAt time.Time, counts postCounts) *model.Post {
	t.Helper()
	post := &model.Post{
		UserID:        authorID,
		Title:         slug,
		Slug:          slug,
		Content:       "body of " + slug,
		Published:     true,
		Views:         counts.views,
		LikesCount:    counts.likes,
		CommentsCount: counts.comments,
		CreatedAt:     createdAt,
	}
	require.NoError(t, f.db.Create(post).Error)
	return post
}

func (f *fixture) draft(t *testing.T, authorID uint64, slug string, createdAt time.Time, counts postCounts) *model.Post {
	t.Helper()
	post := f.post(t, authorID, slug, createdAt, counts)
	require.NoError(t, f.db.Model(post).Update("published", false).Error)
	return post
}

func testEngagementConfig() config.EngagementConfig {
	return config.DefaultEngagement()
}

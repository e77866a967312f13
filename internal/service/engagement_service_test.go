package service

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/repository"
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newEngagement(f *fixture) EngagementService {
	return NewEngagementService(f.engagementRepo, f.postRepo, f.userRepo, f.notificationSv)
}

func TestToggleLikeNotifiesAuthorOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newEngagement(f)

	author := f.user(t, "author@example.com", consts.RoleUser)
	reader := f.user(t, "reader@example.com", consts.RoleUser)
	post := f.post(t, author.ID, "p", time.Now(), postCounts{})
	postKey := strconv.FormatUint(post.ID, 10)

	f.redis.Set(consts.PostLikeKey+postKey, "42")

	res, err := svc.ToggleLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.ToggleResultDTO{Active: true, Count: 1}, res)
	assert.Equal(t, 1, f.notifications.count())
	// 提交后的计数覆盖旧缓存
	cached, _ := f.redis.Get(consts.PostLikeKey + postKey)
	assert.Equal(t, "1", cached)
	assert.Equal(t, countRefreshTTL, f.redis.TTL(consts.PostLikeKey+postKey))
	ok, _ := f.redis.SIsMember(consts.PostDirtyKey, postKey)
	assert.True(t, ok)

	liked, err := svc.HasLiked(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	res, err = svc.ToggleLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.ToggleResultDTO{Active: false, Count: 0}, res)
	// 取消点赞不发通知
	assert.Equal(t, 1, f.notifications.count())

	_, err = svc.ToggleLike(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifications.count())
}

func TestToggleRequiresLoginAndPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newEngagement(f)
	reader := f.user(t, "reader@example.com", consts.RoleUser)

	_, err := svc.ToggleLike(ctx, 0, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.ToggleSave(ctx, reader.ID, 404)
	assert.ErrorIs(t, err, ErrPostNotFound)

	liked, err := svc.HasLiked(ctx, 0, 1)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestSavedPostsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newEngagement(f)

	author := f.user(t, "author@example.com", consts.RoleUser)
	reader := f.user(t, "reader@example.com", consts.RoleUser)
	first := f.post(t, author.ID, "first", time.Now(), postCounts{})
	second := f.post(t, author.ID, "second", time.Now(), postCounts{})

	_, err := svc.ToggleSave(ctx, reader.ID, first.ID)
	require.NoError(t, err)
	res, err := svc.ToggleSave(ctx, reader.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), res.Count)
	// 收藏不通知作者
	assert.Zero(t, f.notifications.count())

	saved, err := svc.GetSavedPosts(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, second.ID, saved[0].ID)
	assert.Equal(t, first.ID, saved[1].ID)
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newEngagement(f)

	author := f.user(t, "author@example.com", consts.RoleUser)
	reader := f.user(t, "reader@example.com", consts.RoleUser)
	other := f.user(t, "other@example.com", consts.RoleUser)
	post := f.post(t, author.ID, "p", time.Now(), postCounts{})

	_, err := svc.CreateComment(ctx, reader.ID, &dto.CommentCreateDTO{PostID: post.ID, Content: "   "})
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = svc.CreateComment(ctx, reader.ID, &dto.CommentCreateDTO{PostID: post.ID, Content: strings.Repeat("字", maxCommentLength+1)})
	assert.ErrorIs(t, err, ErrParamInvalid)

	comment, err := svc.CreateComment(ctx, reader.ID, &dto.CommentCreateDTO{PostID: post.ID, Content: "  nice read  "})
	require.NoError(t, err)
	assert.Equal(t, "nice read", comment.Content)
	require.NotNil(t, comment.Author)
	assert.Equal(t, "reader", comment.Author.Name)
	assert.Equal(t, 1, f.notifications.count())

	got, err := f.postRepo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CommentsCount)

	_, err = svc.UpdateComment(ctx, other.ID, comment.ID, "hijack")
	assert.ErrorIs(t, err, UnauthorizedError)
	_, err = svc.UpdateComment(ctx, reader.ID, 9999, "missing")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	updated, err := svc.UpdateComment(ctx, reader.ID, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	list, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "edited", list[0].Content)

	assert.ErrorIs(t, svc.DeleteComment(ctx, other.ID, comment.ID), UnauthorizedError)
	require.NoError(t, svc.DeleteComment(ctx, reader.ID, comment.ID))
	assert.ErrorIs(t, svc.DeleteComment(ctx, reader.ID, comment.ID), ErrCommentNotFound)

	got, err = f.postRepo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CommentsCount)
}

func TestToggleFallback(t *testing.T) {
	active, err := toggleFallback(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey))
	require.NoError(t, err)
	assert.True(t, active)

	_, err = toggleFallback(gorm.ErrRecordNotFound)
	assert.ErrorIs(t, err, ErrPostNotFound)

	boom := errors.New("boom")
	_, err = toggleFallback(boom)
	assert.ErrorIs(t, err, boom)
}

type failingAuthorRepo struct {
	repository.UserRepo
}

func (failingAuthorRepo) GetUserById(context.Context, uint64) (*model.User, error) {
	return nil, errors.New("users table locked")
}

func TestUpdateCommentLogsAuthorLookupFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.user(t, "author@example.com", consts.RoleUser)
	reader := f.user(t, "reader@example.com", consts.RoleUser)
	post := f.post(t, author.ID, "p", time.Now(), postCounts{})
	comment, err := newEngagement(f).CreateComment(ctx, reader.ID, &dto.CommentCreateDTO{PostID: post.ID, Content: "first"})
	require.NoError(t, err)

	var buf bytes.Buffer
	prev := log.Default()
	log.SetDefault(log.New(log.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { log.SetDefault(prev) })

	svc := NewEngagementService(f.engagementRepo, f.postRepo, failingAuthorRepo{f.userRepo}, f.notificationSv)
	updated, err := svc.UpdateComment(ctx, reader.ID, comment.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Content)
	assert.Contains(t, buf.String(), "load comment author failed")
	assert.Contains(t, buf.String(), "users table locked")
}

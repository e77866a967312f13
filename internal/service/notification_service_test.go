package service

import (
	"BrainScript/internal/pkg/consts"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotifySkipsSelfAndAnonymous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.notificationSv.Notify(ctx, 1, 1, consts.NotificationLike, 10, "")
	f.notificationSv.Notify(ctx, 0, 2, consts.NotificationLike, 10, "")
	assert.Zero(t, f.notifications.count())

	f.notificationSv.Notify(ctx, 1, 2, consts.NotificationComment, 10, strings.Repeat("é", 200))
	require.Equal(t, 1, f.notifications.count())
	content := f.notifications.items[0].Content
	assert.True(t, strings.HasSuffix(content, "..."))
	assert.Equal(t, notificationSnippetLen+3, len([]rune(content)))
}

func TestNotificationListFallbacks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := f.user(t, "author@example.com", consts.RoleUser)
	reader := f.user(t, "reader@example.com", consts.RoleUser)
	post := f.post(t, author.ID, "p", time.Now(), postCounts{})

	f.notificationSv.Notify(ctx, author.ID, reader.ID, consts.NotificationLike, post.ID, "")
	f.notificationSv.Notify(ctx, author.ID, 999, consts.NotificationComment, 888, "gone")

	list, err := f.notificationSv.List(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// 最新的在前
	assert.Equal(t, consts.UnknownUserName, list[0].SenderName)
	assert.Equal(t, consts.DeletedPostTitle, list[0].PostTitle)
	assert.Equal(t, "reader", list[1].SenderName)
	assert.Equal(t, "p", list[1].PostTitle)
	assert.Equal(t, "p", list[1].PostSlug)

	unread, err := f.notificationSv.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	_, err = f.notificationSv.List(ctx, 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNotificationOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.notificationSv.Notify(ctx, 1, 2, consts.NotificationLike, 10, "")
	id := f.notifications.items[0].ID.Hex()

	assert.ErrorIs(t, f.notificationSv.MarkAsRead(ctx, 1, "not-hex"), ErrParamInvalid)
	assert.ErrorIs(t, f.notificationSv.MarkAsRead(ctx, 1, primitive.NewObjectID().Hex()), ErrNotificationNotFound)
	assert.ErrorIs(t, f.notificationSv.MarkAsRead(ctx, 3, id), UnauthorizedError)
	assert.ErrorIs(t, f.notificationSv.Delete(ctx, 3, id), UnauthorizedError)

	require.NoError(t, f.notificationSv.MarkAsRead(ctx, 1, id))
	unread, err := f.notificationSv.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, unread)

	f.notificationSv.Notify(ctx, 1, 2, consts.NotificationComment, 10, "again")
	require.NoError(t, f.notificationSv.MarkAllAsRead(ctx, 1))
	unread, err = f.notificationSv.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, unread)

	require.NoError(t, f.notificationSv.Delete(ctx, 1, id))
	assert.Equal(t, 1, f.notifications.count())
}

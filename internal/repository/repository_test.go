package repository

import (
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/database"
	"BrainScript/internal/pkg/testutil"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: email, Role: "user"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, userID uint64, slug string, published bool, createdAt time.Time) *model.Post {
	t.Helper()
	post := &model.Post{
		UserID:    userID,
		Title:     slug,
		Slug:      slug,
		Content:   "content",
		Published: published,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func reloadPost(t *testing.T, db *gorm.DB, id uint64) *model.Post {
	t.Helper()
	var post model.Post
	require.NoError(t, db.First(&post, id).Error)
	return &post
}

func TestToggleLikeKeepsCounterInSync(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEngagementRepo(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	reader := seedUser(t, db, "reader@example.com")
	post := seedPost(t, db, author.ID, "hello", true, time.Now())

	active, err := repo.ToggleLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, int64(1), reloadPost(t, db, post.ID).LikesCount)

	active, err = repo.ToggleLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, active)

	rows, err := repo.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.Equal(t, int64(0), reloadPost(t, db, post.ID).LikesCount)
}

func TestToggleLikeConcurrentReaders(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEngagementRepo(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	post := seedPost(t, db, author.ID, "busy", true, time.Now())

	const readers = 8
	ids := make([]uint64, readers)
	for i := range ids {
		ids[i] = seedUser(t, db, fmt.Sprintf("r%d@example.com", i)).ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			_, err := repo.ToggleLike(ctx, uid, post.ID)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	rows, err := repo.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(readers), rows)
	assert.Equal(t, rows, reloadPost(t, db, post.ID).LikesCount)
}

func TestToggleRemovesExistingRowAfterInsertConflict(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEngagementRepo(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	reader := seedUser(t, db, "reader@example.com")
	post := seedPost(t, db, author.ID, "liked", true, time.Now())
	require.NoError(t, db.Create(&model.Like{UserID: reader.ID, PostID: post.ID, CreatedAt: time.Now()}).Error)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", post.ID).Update("likes_count", 1).Error)

	active, err := repo.ToggleLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, active)

	liked, err := repo.CheckLikeExists(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, reloadPost(t, db, post.ID).LikesCount)
}

func TestToggleOnMissingPost(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEngagementRepo(db)
	ctx := context.Background()

	reader := seedUser(t, db, "reader@example.com")

	_, err := repo.ToggleLike(ctx, reader.ID, 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.ToggleSave(ctx, reader.ID, 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	rows, err := repo.CountLikes(ctx, 404)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestToggleSaveAndSavedPostIDs(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEngagementRepo(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	reader := seedUser(t, db, "reader@example.com")
	first := seedPost(t, db, author.ID, "first", true, time.Now())
	second := seedPost(t, db, author.ID, "second", true, time.Now())

	_, err := repo.ToggleSave(ctx, reader.ID, first.ID)
	require.NoError(t, err)
	_, err = repo.ToggleSave(ctx, reader.ID, second.ID)
	require.NoError(t, err)

	saved, err := repo.CheckSaveExists(ctx, reader.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	ids, err := repo.GetSavedPostIDs(ctx, reader.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{first.ID, second.ID}, ids)
	assert.Equal(t, int64(1), reloadPost(t, db, first.ID).SavesCount)
}

func TestDuplicateLikeIsReportedAsDuplicateKey(t *testing.T) {
	db := testutil.NewDB(t)
	author := seedUser(t, db, "author@example.com")
	post := seedPost(t, db, author.ID, "dup", true, time.Now())

	require.NoError(t, db.Create(&model.Like{UserID: author.ID, PostID: post.ID}).Error)
	err := db.Create(&model.Like{UserID: author.ID, PostID: post.ID}).Error
	assert.True(t, database.IsDuplicateKey(err))
}

func TestCommentCounterNeverNegative(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEngagementRepo(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	post := seedPost(t, db, author.ID, "comments", true, time.Now())

	comment := &model.Comment{PostID: post.ID, UserID: author.ID, Content: "hi"}
	require.NoError(t, repo.CreateComment(ctx, comment))
	assert.Equal(t, int64(1), reloadPost(t, db, post.ID).CommentsCount)

	require.NoError(t, repo.DeleteComment(ctx, comment))
	// 重复删除不再回退计数
	require.NoError(t, repo.DeleteComment(ctx, comment))
	assert.Equal(t, int64(0), reloadPost(t, db, post.ID).CommentsCount)

	got, err := repo.GetCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeletePostCascade(t *testing.T) {
	db := testutil.NewDB(t)
	engagement := NewEngagementRepo(db)
	posts := NewPostRepository(db)
	presence := NewPresenceRepo(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	reader := seedUser(t, db, "reader@example.com")
	post := seedPost(t, db, author.ID, "doomed", true, time.Now())
	other := seedPost(t, db, author.ID, "survivor", true, time.Now())

	_, err := engagement.ToggleLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	_, err = engagement.ToggleSave(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	require.NoError(t, engagement.CreateComment(ctx, &model.Comment{PostID: post.ID, UserID: reader.ID, Content: "x"}))
	require.NoError(t, engagement.CreateComment(ctx, &model.Comment{PostID: other.ID, UserID: reader.ID, Content: "y"}))
	require.NoError(t, presence.Upsert(ctx, &model.Presence{PostID: post.ID, UserID: reader.ID, Identity: "user:2", UpdatedAt: time.Now().UnixMilli()}))

	require.NoError(t, posts.DeletePostCascade(ctx, post.ID))

	for _, table := range []interface{}{&model.Comment{}, &model.Like{}, &model.Save{}, &model.Presence{}} {
		var count int64
		require.NoError(t, db.Model(table).Where("post_id = ?", post.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
	got, err := posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	remaining, err := engagement.CountComments(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)

	assert.ErrorIs(t, posts.DeletePostCascade(ctx, post.ID), gorm.ErrRecordNotFound)
}

func TestPresenceUpsertRefreshesRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPresenceRepo(db)
	ctx := context.Background()

	base := time.Now().UnixMilli()
	require.NoError(t, repo.Upsert(ctx, &model.Presence{PostID: 1, Identity: "anon:abcdefgh", UpdatedAt: base - 60_000}))
	require.NoError(t, repo.Upsert(ctx, &model.Presence{PostID: 1, Identity: "anon:abcdefgh", UpdatedAt: base}))
	require.NoError(t, repo.Upsert(ctx, &model.Presence{PostID: 1, Identity: "user:9", UserID: 9, UpdatedAt: base - 45_000}))

	var total int64
	require.NoError(t, db.Model(&model.Presence{}).Count(&total).Error)
	assert.Equal(t, int64(2), total)

	active, err := repo.FindActive(ctx, 1, base-30_000, 20)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "anon:abcdefgh", active[0].Identity)

	count, err := repo.CountActive(ctx, 1, base-30_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostQueries(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "author@example.com")
	now := time.Now()
	old := seedPost(t, db, author.ID, "old", true, now.Add(-10*24*time.Hour))
	fresh := seedPost(t, db, author.ID, "fresh", true, now.Add(-time.Hour))
	seedPost(t, db, author.ID, "draft", false, now)
	require.NoError(t, repo.UpdatePost(ctx, fresh.ID, map[string]interface{}{"category": "go"}))
	require.NoError(t, repo.IncrementViews(ctx, old.ID))
	require.NoError(t, repo.AddReadTime(ctx, old.ID, 1500))

	recent, err := repo.ListCreatedAfter(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fresh.ID, recent[0].ID)

	exists, err := repo.ExistsSlug(ctx, "fresh", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsSlug(ctx, "fresh", fresh.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, categories)

	totals, err := repo.SumByAuthor(ctx, author.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Posts)
	assert.Equal(t, int64(1), totals.Views)
	assert.Equal(t, int64(1500), totals.ReadTimeMs)

	all, err := repo.SumByAuthor(ctx, author.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Posts)

	assert.ErrorIs(t, repo.IncrementViews(ctx, 999), gorm.ErrRecordNotFound)
}

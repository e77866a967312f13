package handler

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/api/middleware"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/service"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPresenceSvc struct {
	identities []service.ReaderIdentity
	err        error
	count      int64
}

func (s *stubPresenceSvc) Heartbeat(_ context.Context, _ uint64, identity service.ReaderIdentity) error {
	s.identities = append(s.identities, identity)
	return s.err
}

func (s *stubPresenceSvc) GetActiveReaders(context.Context, uint64) ([]*dto.ReaderDTO, error) {
	return []*dto.ReaderDTO{}, s.err
}

func (s *stubPresenceSvc) GetViewerCount(context.Context, uint64) (int64, error) {
	return s.count, nil
}

type stubUserSvc struct {
	service.UserService
	synced []*dto.IdentityWebhookDTO
}

func (s *stubUserSvc) VerifyWebhookSecret(secret string) error {
	if secret != "whsec" {
		return service.ErrWebhookSecretMismatch
	}
	return nil
}

func (s *stubUserSvc) SyncFromProvider(_ context.Context, evt *dto.IdentityWebhookDTO) error {
	s.synced = append(s.synced, evt)
	return nil
}

type stubPostSvc struct {
	service.PostService
}

func (s *stubPostSvc) GetByID(_ context.Context, postID uint64) (*dto.PostDTO, error) {
	if postID != 1 {
		return nil, service.ErrPostNotFound
	}
	return &dto.PostDTO{ID: 1, Views: 9}, nil
}

type stubRankingSvc struct {
	service.RankingService
}

func (s *stubRankingSvc) GetLikeCount(context.Context, uint64) (int64, error)    { return 3, nil }
func (s *stubRankingSvc) GetCommentCount(context.Context, uint64) (int64, error) { return 2, nil }
func (s *stubRankingSvc) GetSaveCount(context.Context, uint64) (int64, error)    { return 1, nil }

func (s *stubRankingSvc) GetMyStats(_ context.Context, callerID uint64) (*dto.AuthorStatsDTO, error) {
	if callerID == 0 {
		return nil, nil
	}
	return &dto.AuthorStatsDTO{TotalPosts: 4}, nil
}

type stubEngagementSvc struct {
	service.EngagementService
}

func (s *stubEngagementSvc) HasLiked(context.Context, uint64, uint64) (bool, error) { return true, nil }
func (s *stubEngagementSvc) HasSaved(context.Context, uint64, uint64) (bool, error) { return false, nil }

func withUser(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func perform(t *testing.T, r *gin.Engine, method, path string, body []byte, headers map[string]string) dto.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHeartbeatAlwaysSucceeds(t *testing.T) {
	svc := &stubPresenceSvc{err: errors.New("db down")}
	h := NewPresenceHandler(svc)
	r := gin.New()
	r.POST("/presence/heartbeat/:post_id", withUser(0), middleware.ReaderSessionMiddleware(), h.Heartbeat)

	resp := perform(t, r, http.MethodPost, "/presence/heartbeat/5", nil, map[string]string{
		consts.ReaderSessionHeader: "tab-12345678",
	})
	assert.Equal(t, 200, resp.Code)
	require.Len(t, svc.identities, 1)
	assert.Equal(t, "anon:tab-12345678", svc.identities[0].Key)

	resp = perform(t, r, http.MethodPost, "/presence/heartbeat/abc", nil, nil)
	assert.Equal(t, 400, resp.Code)
	assert.Len(t, svc.identities, 1)
}

func TestHeartbeatPrefersLoggedInUser(t *testing.T) {
	svc := &stubPresenceSvc{}
	h := NewPresenceHandler(svc)
	r := gin.New()
	r.POST("/presence/heartbeat/:post_id", withUser(42), middleware.ReaderSessionMiddleware(), h.Heartbeat)

	perform(t, r, http.MethodPost, "/presence/heartbeat/5?session=tab-12345678", nil, nil)
	require.Len(t, svc.identities, 1)
	assert.Equal(t, "user:42", svc.identities[0].Key)
}

func TestViewerCount(t *testing.T) {
	h := NewPresenceHandler(&stubPresenceSvc{count: 3})
	r := gin.New()
	r.GET("/presence/count/:post_id", h.GetViewerCount)

	resp := perform(t, r, http.MethodGet, "/presence/count/5", nil, nil)
	assert.Equal(t, 200, resp.Code)
	assert.EqualValues(t, 3, resp.Data)
}

func TestWebhookIdentity(t *testing.T) {
	svc := &stubUserSvc{}
	h := NewWebhookHandler(svc)
	r := gin.New()
	r.POST("/webhooks/identity", h.Identity)

	valid := []byte(`{"type":"user.created","data":{"email":"ada@example.com","first_name":"Ada"}}`)

	resp := perform(t, r, http.MethodPost, "/webhooks/identity", valid, map[string]string{"X-Webhook-Secret": "nope"})
	assert.Equal(t, 401, resp.Code)

	resp = perform(t, r, http.MethodPost, "/webhooks/identity", []byte(`{"type":"user.deleted","data":{}}`), map[string]string{"X-Webhook-Secret": "whsec"})
	assert.Equal(t, 400, resp.Code)
	assert.Empty(t, svc.synced)

	resp = perform(t, r, http.MethodPost, "/webhooks/identity", valid, map[string]string{"X-Webhook-Secret": "whsec"})
	assert.Equal(t, 200, resp.Code)
	require.Len(t, svc.synced, 1)
	assert.Equal(t, "ada@example.com", svc.synced[0].Data.Email)
}

func newPostRouter(userID uint64) *gin.Engine {
	h := NewPostHandler(&stubPostSvc{}, &stubRankingSvc{}, &stubEngagementSvc{}, &stubPresenceSvc{count: 5})
	r := gin.New()
	r.Use(withUser(userID))
	r.GET("/posts/mine/stats", h.GetMyStats)
	r.GET("/posts/:post_id/state", h.GetPostState)
	return r
}

func TestGetMyStatsAnonymousIsNull(t *testing.T) {
	resp := perform(t, newPostRouter(0), http.MethodGet, "/posts/mine/stats", nil, nil)
	assert.Equal(t, 200, resp.Code)
	assert.Nil(t, resp.Data)

	resp = perform(t, newPostRouter(7), http.MethodGet, "/posts/mine/stats", nil, nil)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 4, data["totalPosts"])
}

func TestGetPostState(t *testing.T) {
	// 匿名访问不查询点赞收藏状态
	resp := perform(t, newPostRouter(0), http.MethodGet, "/posts/1/state", nil, nil)
	assert.Equal(t, 200, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 9, data["viewCount"])
	assert.EqualValues(t, 3, data["likeCount"])
	assert.EqualValues(t, 5, data["viewerCount"])
	assert.Equal(t, false, data["isLiked"])

	resp = perform(t, newPostRouter(7), http.MethodGet, "/posts/1/state", nil, nil)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["isLiked"])
	assert.Equal(t, false, data["isSaved"])

	resp = perform(t, newPostRouter(7), http.MethodGet, "/posts/2/state", nil, nil)
	assert.Equal(t, 404, resp.Code)
}

package middleware

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/security"
	"BrainScript/internal/pkg/testutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.Response{Code: 200, Data: gin.H{
			"uid":     c.GetUint64(ContextUserID),
			"session": c.GetString(ContextReaderSession),
		}})
	}
	r.GET("/private", AuthMiddleware(), whoami)
	r.GET("/public", AuthOptionalMiddleware(), ReaderSessionMiddleware(), whoami)
	return r
}

func call(t *testing.T, r *gin.Engine, path, token string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return resp.Code, data
}

func TestAuthMiddleware(t *testing.T) {
	mr := testutil.NewRedis(t)
	r := newRouter()

	code, _ := call(t, r, "/private", "", nil)
	assert.Equal(t, 401, code)

	code, _ = call(t, r, "/private", "not-a-jwt", nil)
	assert.Equal(t, 401, code)

	token, err := security.GenerateToken(42, "ada@example.com", nil)
	require.NoError(t, err)

	code, data := call(t, r, "/private", token, nil)
	assert.Equal(t, 200, code)
	assert.EqualValues(t, 42, data["uid"])

	// WebSocket 场景从 query 读取
	code, data = call(t, r, "/private?token="+token, "", nil)
	assert.Equal(t, 200, code)
	assert.EqualValues(t, 42, data["uid"])

	signature := token[strings.LastIndex(token, ".")+1:]
	require.NoError(t, mr.Set(consts.TokenRevokedKey+signature, "1"))
	code, _ = call(t, r, "/private", token, nil)
	assert.Equal(t, 401, code)
}

func TestAuthOptionalMiddleware(t *testing.T) {
	testutil.NewRedis(t)
	r := newRouter()

	code, data := call(t, r, "/public", "", map[string]string{consts.ReaderSessionHeader: "tab-12345678"})
	assert.Equal(t, 200, code)
	assert.EqualValues(t, 0, data["uid"])
	assert.Equal(t, "tab-12345678", data["session"])

	// 无效令牌降级为匿名
	code, data = call(t, r, "/public", "a.b.c", nil)
	assert.Equal(t, 200, code)
	assert.EqualValues(t, 0, data["uid"])

	token, err := security.GenerateToken(7, "ada@example.com", nil)
	require.NoError(t, err)
	_, data = call(t, r, "/public?session=q-session-1", token, nil)
	assert.EqualValues(t, 7, data["uid"])
	assert.Equal(t, "q-session-1", data["session"])
}

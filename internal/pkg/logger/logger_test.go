package logger

import (
	"BrainScript/internal/pkg/consts"
	"bytes"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestContextHandlerAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&ContextHandler{log.NewJSONHandler(&buf, nil)}).With("component", "test")

	ctx := context.WithValue(context.Background(), TraceIDKey, "abc")
	l.InfoContext(ctx, "hello")
	l.Info("no trace")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "abc", lines[0][TraceIDKey])
	assert.Equal(t, "test", lines[0]["component"])
	_, ok := lines[1][TraceIDKey]
	assert.False(t, ok)
}

func TestWithTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "job-trending-")
	assert.True(t, strings.HasPrefix(TraceID(ctx), "job-trending-"))
	assert.Equal(t, "", TraceID(context.Background()))
}

func TestRemoteFilterOnlyForwardsTracedRecords(t *testing.T) {
	var local, remote bytes.Buffer
	h := &TeeHandler{handlers: []log.Handler{
		log.NewJSONHandler(&local, nil),
		&RemoteFilterHandler{next: log.NewJSONHandler(&remote, nil)},
	}}
	l := log.New(&ContextHandler{h})

	l.Info("startup")
	l.InfoContext(context.WithValue(context.Background(), TraceIDKey, "t-1"), "request")
	l.Warn("kafka consumer lagging")

	assert.Len(t, decodeLines(t, &local), 3)
	remoteLines := decodeLines(t, &remote)
	require.Len(t, remoteLines, 2)
	assert.Equal(t, "request", remoteLines[0]["msg"])
	assert.Equal(t, "kafka consumer lagging", remoteLines[1]["msg"])
}

type failingHandler struct {
	log.Handler
}

func (failingHandler) Handle(context.Context, log.Record) error {
	return errors.New("logstash gone")
}

func TestTeeHandlerKeepsWritingWhenOneSinkFails(t *testing.T) {
	var local bytes.Buffer
	debug := &log.HandlerOptions{Level: log.LevelDebug}
	h := &TeeHandler{handlers: []log.Handler{
		failingHandler{log.NewJSONHandler(&bytes.Buffer{}, debug)},
		log.NewJSONHandler(&local, debug),
	}}
	ctx := context.Background()
	require.True(t, h.Enabled(ctx, log.LevelDebug))

	r := log.NewRecord(time.Now(), log.LevelDebug, "frame", 0)
	r.AddAttrs(log.String("component", "ws"))
	assert.EqualError(t, h.Handle(ctx, r), "logstash gone")

	lines := decodeLines(t, &local)
	require.Len(t, lines, 1)
	assert.Equal(t, "ws", lines[0]["component"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...[truncated]", truncate("abcdef", 2))
}

func TestRedisArgsMaskRevokedTokens(t *testing.T) {
	ctx := context.Background()

	cmd := redis.NewStringCmd(ctx, "get", consts.TokenRevokedKey+"sig-secret")
	args := redisArgs(cmd)
	assert.NotContains(t, args, "sig-secret")
	assert.Equal(t, "get "+consts.TokenRevokedKey+"***", args)

	assert.Equal(t, "[PROTECTED]", redisArgs(redis.NewStatusCmd(ctx, "auth", "pwd")))
	assert.Equal(t, "sadd post:dirty 7", redisArgs(redis.NewIntCmd(ctx, "sadd", consts.PostDirtyKey, 7)))
}

func TestExpectedRedisError(t *testing.T) {
	assert.True(t, expectedRedisError("get", redis.Nil))
	assert.True(t, expectedRedisError("rename", errors.New("ERR no such key")))
	assert.False(t, expectedRedisError("get", errors.New("ERR no such key")))
	assert.False(t, expectedRedisError("set", errors.New("connection refused")))
}

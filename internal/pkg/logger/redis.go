package logger

import (
	"BrainScript/internal/pkg/consts"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = 50 * time.Millisecond

// RedisLoggerHook 把计数缓存、排行缓存与登出黑名单的访问写进 slog
type RedisLoggerHook struct{}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "redis dial failed", "addr", addr, "err", err)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		if err != nil && expectedRedisError(cmd.Name(), err) {
			return err
		}
		if err == nil && elapsed < redisSlowThreshold {
			return nil
		}

		fields := []any{
			log.String("command", cmd.Name()),
			log.String("args", redisArgs(cmd)),
			log.Duration("latency", elapsed),
		}
		if err != nil {
			log.ErrorContext(ctx, "redis command failed", append(fields, log.Any("err", err))...)
		} else {
			log.WarnContext(ctx, "redis command slow", fields...)
		}
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if err != nil {
			log.ErrorContext(ctx, "redis pipeline failed",
				log.Int("cmd_count", len(cmds)),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return err
	}
}

// expectedRedisError 缓存未命中、脏集合为空时的改名失败都属正常流程
func expectedRedisError(name string, err error) bool {
	if errors.Is(err, redis.Nil) {
		return true
	}
	msg := err.Error()
	if name == "rename" && strings.Contains(msg, "no such key") {
		return true
	}
	return name == "client" && strings.Contains(msg, "setinfo")
}

// redisArgs 登出黑名单的键里带着令牌签名，不能原样落日志
func redisArgs(cmd redis.Cmder) string {
	switch cmd.Name() {
	case "auth", "hello":
		return "[PROTECTED]"
	}
	args := cmd.Args()
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		s := fmt.Sprint(arg)
		if strings.HasPrefix(s, consts.TokenRevokedKey) {
			s = consts.TokenRevokedKey + "***"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultJWTSecret  = "BrainScript"
	defaultJWTIssuer  = "BrainScript"
	JWTExpirationTime = time.Hour * 24
)

// UserClaims 身份提供方签发的令牌中我们关心的字段
type UserClaims struct {
	UserID uint64   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Remaining 距离过期的剩余时间，用于登出后在 Redis 中拉黑
func (c *UserClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return JWTExpirationTime
	}
	return c.ExpiresAt.Time.Sub(now)
}

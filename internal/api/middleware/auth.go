package middleware

import (
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/redis"
	"BrainScript/internal/pkg/response"
	"BrainScript/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
	ContextToken  = "token"
)

// bearerToken 优先读 Authorization 头；浏览器的 WebSocket 无法带头，退回到 query 参数
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// authenticate 校验签名、签发方、过期时间与登出黑名单
func authenticate(c *gin.Context, tokenString string) (*security.UserClaims, bool, error) {
	signature, err := security.ExtractSignature(tokenString)
	if err != nil {
		return nil, false, nil
	}

	value, err := redis.GetValue(c.Request.Context(), consts.TokenRevokedKey+signature)
	if err != nil {
		return nil, false, err
	}
	if value != "" {
		return nil, false, nil
	}

	claims, err := security.ValidateToken(tokenString)
	if err != nil {
		return nil, false, nil
	}
	return claims, true, nil
}

func injectIdentity(c *gin.Context, tokenString string, claims *security.UserClaims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextClaims, claims)
	c.Set(ContextToken, tokenString)

	newCtx := context.WithValue(c.Request.Context(), ContextUserID, claims.UserID)
	c.Request = c.Request.WithContext(newCtx)
}

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		claims, ok, err := authenticate(c, tokenString)
		if err != nil {
			response.Fail(c, response.InternalServerError, "未知错误")
			c.Abort()
			return
		}
		if !ok {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		injectIdentity(c, tokenString, claims)
		c.Next()
	}
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "portfolio-chat-api/pkg/errors"
	"portfolio-chat-api/pkg/utils"
)

// RequireRole 校验 Bearer JWT 并要求指定角色
// 用于调试接口，密钥为空时路由不会注册
func RequireRole(jwtManager *utils.JWTManager, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortAuth(c, http.StatusUnauthorized, apperrors.CodeTokenMissing, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortAuth(c, http.StatusUnauthorized, apperrors.CodeTokenInvalid, "invalid authorization format")
			return
		}

		claims, err := jwtManager.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				abortAuth(c, http.StatusUnauthorized, apperrors.CodeTokenExpired, "token expired")
				return
			}
			abortAuth(c, http.StatusUnauthorized, apperrors.CodeTokenInvalid, "invalid token")
			return
		}

		if claims.Role != role {
			abortAuth(c, http.StatusForbidden, apperrors.CodeForbidden, "insufficient role")
			return
		}

		c.Set("subject", claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code apperrors.ErrorCode, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":     code,
		"message":  msg,
		"trace_id": c.GetString("trace_id"),
	})
}

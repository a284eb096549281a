package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reelforge/internal/pkg/ctxutil"
	httputil "reelforge/internal/pkg/http"
	"reelforge/internal/pkg/jwt"
)

// Auth JWT 认证中间件
// 校验 Authorization: Bearer {token}，通过后把 user_id 注入 request context
func Auth(jwtUtil *jwt.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.ErrorResponse{
				Code:    40101,
				Message: "未授权",
			})
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.ErrorResponse{
				Code:    40101,
				Message: "Invalid authorization header",
			})
			return
		}

		claims, err := jwtUtil.ValidateToken(token)
		if err != nil {
			code := 40102
			message := "Token无效"
			if errors.Is(err, jwt.ErrExpiredToken) {
				code = 40103
				message = "Token已过期"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.ErrorResponse{
				Code:    code,
				Message: message,
			})
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

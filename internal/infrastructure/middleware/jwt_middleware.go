package middleware

import (
	"net/http"
	"strings"

	"plural_proxy_server/pkg/errorx"
	"plural_proxy_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// ContextAccountID 上下文中平台账号 id 的键
const ContextAccountID = "account_id"

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将平台账号 id 存入上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "Missing access token.",
			})
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "Malformed Authorization header, expected a Bearer token.",
			})
			return
		}

		// 3. 验证 Token
		claims, err := jwt.ParseToken(parts[1])
		if err != nil || claims.AccountID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "Access token expired or invalid.",
			})
			return
		}

		// 4. 将账号 id 存入上下文，供后续 Handler 使用
		c.Set(ContextAccountID, claims.AccountID)
		c.Next()
	}
}

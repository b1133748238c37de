package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// Secure 安全响应头，redirect 为 true 时将 HTTP 请求重定向到 HTTPS
// 由 Nginx 终结 TLS 时关闭重定向
func Secure(host string, port int, redirect bool) gin.HandlerFunc {
	// 在返回函数之前初始化，避免每次请求都重复创建对象
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        redirect,
		SSLHost:            host + ":" + strconv.Itoa(port),
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})

	return func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)

		// 出错时（包括已写出 HTTPS 重定向）不再继续
		if err != nil {
			// 中间件里不能用 Fatal，记录日志并终止当前请求
			zap.L().Debug("secure middleware stopped request", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"net/http"

	"plural_proxy_server/internal/config"                    // 配置管理
	"plural_proxy_server/internal/handler"                   // Handler 聚合对象
	"plural_proxy_server/internal/infrastructure/logger"     // 自定义日志中间件
	"plural_proxy_server/internal/infrastructure/middleware" // 安全响应头
	"plural_proxy_server/internal/router"                    // 路由注册

	"github.com/gin-contrib/cors" // CORS 跨域中间件
	"github.com/gin-gonic/gin"    // Gin Web 框架
)

// Init 初始化 HTTP/HTTPS 服务器并返回 Gin 引擎实例
// handlers: 通过依赖注入传入的 handler 聚合对象
// metrics: /metrics 处理器，可为 nil
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则与安全响应头
//  4. 注册业务路由
func Init(handlers *handler.Handlers, metrics http.Handler) *gin.Engine {
	conf := config.GetConfig()
	if conf.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建空白 Gin 引擎（不使用 gin.Default() 以便完全控制中间件）
	engine := gin.New()

	// 注册自定义 Zap 日志中间件，替代 Gin 默认的日志
	engine.Use(logger.GinLogger())

	// 注册 Panic 恢复中间件，参数 true 表示在日志中包含堆栈信息
	engine.Use(logger.GinRecovery(true))

	// 配置 CORS 跨域规则
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 允许所有来源（生产环境应指定具体域名）
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 安全响应头；由 Nginx 终结 TLS 时 tlsRedirect 保持 false
	engine.Use(middleware.Secure(conf.MainConfig.Host, conf.MainConfig.Port, conf.SecurityConfig.TLSRedirect))

	// 创建路由管理器并注册所有业务路由
	rt := router.NewRouter(handlers, metrics)
	rt.RegisterRoutes(engine)

	return engine
}

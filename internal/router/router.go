// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"net/http"

	"plural_proxy_server/internal/handler"
	"plural_proxy_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合
type Router struct {
	handlers *handler.Handlers
	metrics  http.Handler
}

// NewRouter 创建路由管理器；metrics 为 nil 时不暴露 /metrics
func NewRouter(handlers *handler.Handlers, metrics http.Handler) *Router {
	return &Router{handlers: handlers, metrics: metrics}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if rt.metrics != nil {
		r.GET("/metrics", gin.WrapH(rt.metrics))
	}

	// 以下接口需要认证，账号 id 取自 Token
	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth())
	{
		rt.RegisterSystemRoutes(api)  // 系统
		rt.RegisterMemberRoutes(api)  // 成员
		rt.RegisterSwitchRoutes(api)  // 前台切换
		rt.RegisterMessageRoutes(api) // 代理消息查询
	}
}

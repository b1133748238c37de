package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册代理消息查询路由
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	rg.GET("/message/:id", rt.handlers.Message.Info)
}

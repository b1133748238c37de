package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMemberRoutes 注册成员相关路由
func (rt *Router) RegisterMemberRoutes(rg *gin.RouterGroup) {
	memberGroup := rg.Group("/member")
	{
		memberGroup.GET("", rt.handlers.Member.List)
		memberGroup.POST("", rt.handlers.Member.Create)
		memberGroup.GET("/:hid", rt.handlers.Member.Get)
		memberGroup.PATCH("/:hid", rt.handlers.Member.Update)
		memberGroup.DELETE("/:hid", rt.handlers.Member.Delete)
	}
}

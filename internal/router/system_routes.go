package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterSystemRoutes 注册系统相关路由
func (rt *Router) RegisterSystemRoutes(rg *gin.RouterGroup) {
	systemGroup := rg.Group("/system")
	{
		systemGroup.POST("", rt.handlers.System.Register)                 // 注册系统
		systemGroup.GET("", rt.handlers.System.Get)                       // 查询当前系统
		systemGroup.PATCH("", rt.handlers.System.Update)                  // 修改系统资料
		systemGroup.POST("/accounts", rt.handlers.System.LinkAccount)     // 绑定账号
		systemGroup.DELETE("/accounts", rt.handlers.System.UnlinkAccount) // 解绑账号
	}
}

package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterSwitchRoutes 注册前台切换相关路由
func (rt *Router) RegisterSwitchRoutes(rg *gin.RouterGroup) {
	switchGroup := rg.Group("/switch")
	{
		switchGroup.GET("/fronters", rt.handlers.Switch.Fronters) // 当前前台
		switchGroup.GET("/history", rt.handlers.Switch.History)   // 切换历史
		switchGroup.POST("", rt.handlers.Switch.Register)         // 记录切换
		switchGroup.POST("/move", rt.handlers.Switch.Move)        // 修改最近一次切换时间
	}
}

package handler

import (
	"plural_proxy_server/internal/infrastructure/middleware"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/internal/service"
	"plural_proxy_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// accountID 当前请求的平台账号 id
func accountID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.ContextAccountID)
	if !ok {
		return 0, false
	}
	uid, ok := v.(int64)
	return uid, ok
}

// currentSystem 当前账号所属系统，失败时已写入响应
func currentSystem(c *gin.Context, systemSvc service.SystemService) (*model.System, bool) {
	uid, ok := accountID(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "Unauthorized."))
		return nil, false
	}
	system, err := systemSvc.Resolve(c.Request.Context(), uid)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return system, true
}

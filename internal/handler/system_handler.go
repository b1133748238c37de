// Package handler 提供 HTTP 请求处理器
// 本文件处理系统相关的 API 请求
package handler

import (
	"plural_proxy_server/internal/dto/request"
	"plural_proxy_server/internal/dto/respond"
	"plural_proxy_server/internal/service"
	"plural_proxy_server/internal/service/system"
	"plural_proxy_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// SystemHandler 系统请求处理器
type SystemHandler struct {
	systemSvc service.SystemService
}

// NewSystemHandler 创建系统处理器实例
func NewSystemHandler(systemSvc service.SystemService) *SystemHandler {
	return &SystemHandler{systemSvc: systemSvc}
}

// Register 注册系统
// POST /api/v1/system
// 请求体: request.RegisterSystemRequest
// 响应: respond.SystemRespond
func (h *SystemHandler) Register(c *gin.Context) {
	var req request.RegisterSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	uid, ok := accountID(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "Unauthorized."))
		return
	}
	sys, err := h.systemSvc.Register(c.Request.Context(), uid, req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewSystemRespond(sys, []int64{uid}))
}

// Get 当前账号的系统
// GET /api/v1/system
// 响应: respond.SystemRespond
func (h *SystemHandler) Get(c *gin.Context) {
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	accounts, err := h.systemSvc.Accounts(c.Request.Context(), sys.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewSystemRespond(sys, accounts))
}

// Update 修改系统资料
// PATCH /api/v1/system
// 请求体: request.UpdateSystemRequest
// 响应: respond.SystemRespond
func (h *SystemHandler) Update(c *gin.Context) {
	var req request.UpdateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}

	var updates []system.Update
	if req.Name != nil {
		updates = append(updates, system.SetName{Name: *req.Name})
	}
	if req.Description != nil {
		updates = append(updates, system.SetDescription{Description: *req.Description})
	}
	if req.Tag != nil {
		updates = append(updates, system.SetTag{Tag: *req.Tag})
	}
	if req.AvatarURL != nil {
		updates = append(updates, system.SetAvatar{URL: *req.AvatarURL})
	}

	updated, err := h.systemSvc.Update(c.Request.Context(), sys.ID, updates...)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewSystemRespond(updated, nil))
}

// LinkAccount 绑定账号
// POST /api/v1/system/accounts
// 请求体: request.AccountRequest
// 响应: nil
func (h *SystemHandler) LinkAccount(c *gin.Context) {
	var req request.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	if err := h.systemSvc.LinkAccount(c.Request.Context(), sys.ID, req.AccountID); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UnlinkAccount 解绑账号
// DELETE /api/v1/system/accounts
// 请求体: request.AccountRequest
// 响应: nil
func (h *SystemHandler) UnlinkAccount(c *gin.Context) {
	var req request.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	if err := h.systemSvc.UnlinkAccount(c.Request.Context(), sys.ID, req.AccountID); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Package handler 提供 HTTP 请求处理器
// 本文件处理前台切换相关的 API 请求
package handler

import (
	"time"

	"plural_proxy_server/internal/dto/request"
	"plural_proxy_server/internal/dto/respond"
	"plural_proxy_server/internal/service"
	"plural_proxy_server/internal/service/switches"

	"github.com/gin-gonic/gin"
)

// SwitchHandler 前台切换请求处理器
type SwitchHandler struct {
	systemSvc service.SystemService
	memberSvc service.MemberService
	switchSvc service.SwitchService
	now       func() time.Time
}

// NewSwitchHandler 创建切换处理器实例
func NewSwitchHandler(systemSvc service.SystemService, memberSvc service.MemberService, switchSvc service.SwitchService) *SwitchHandler {
	return &SwitchHandler{
		systemSvc: systemSvc,
		memberSvc: memberSvc,
		switchSvc: switchSvc,
		now:       time.Now,
	}
}

// Fronters 当前前台
// GET /api/v1/switch/fronters
// 响应: respond.FrontersRespond
func (h *SwitchHandler) Fronters(c *gin.Context) {
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	front, err := h.switchSvc.CurrentFronters(c.Request.Context(), sys.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewFrontersRespond(front))
}

// History 切换历史
// GET /api/v1/switch/history?limit=10
// 响应: []respond.SwitchRespond
func (h *SwitchHandler) History(c *gin.Context) {
	var query request.SwitchHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	entries, err := h.switchSvc.History(c.Request.Context(), sys.ID, query.Limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewSwitchListRespond(entries))
}

// Register 记录切换
// POST /api/v1/switch
// 请求体: request.RegisterSwitchRequest
// 响应: respond.SwitchRespond
func (h *SwitchHandler) Register(c *gin.Context) {
	var req request.RegisterSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}

	ids := make([]uint, 0, len(req.Members))
	for _, hid := range req.Members {
		m, err := h.memberSvc.Get(c.Request.Context(), sys.ID, hid)
		if err != nil {
			HandleError(c, err)
			return
		}
		ids = append(ids, m.ID)
	}

	entry, err := h.switchSvc.RegisterSwitch(c.Request.Context(), sys.ID, ids)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewSwitchRespond(entry))
}

// Move 修改最近一次切换的时间
// POST /api/v1/switch/move
// 请求体: request.MoveSwitchRequest
// 响应: respond.SwitchRespond
func (h *SwitchHandler) Move(c *gin.Context) {
	var req request.MoveSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	to, err := switches.ParseTime(req.Time, h.now())
	if err != nil {
		HandleError(c, err)
		return
	}
	entry, err := h.switchSvc.MoveLastSwitch(c.Request.Context(), sys.ID, to)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewSwitchRespond(entry))
}

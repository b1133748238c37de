// Package handler 提供 HTTP 请求处理器
// 本文件处理成员相关的 API 请求
package handler

import (
	"plural_proxy_server/internal/dto/request"
	"plural_proxy_server/internal/dto/respond"
	"plural_proxy_server/internal/service"
	"plural_proxy_server/internal/service/member"

	"github.com/gin-gonic/gin"
)

// MemberHandler 成员请求处理器
type MemberHandler struct {
	systemSvc service.SystemService
	memberSvc service.MemberService
}

// NewMemberHandler 创建成员处理器实例
func NewMemberHandler(systemSvc service.SystemService, memberSvc service.MemberService) *MemberHandler {
	return &MemberHandler{systemSvc: systemSvc, memberSvc: memberSvc}
}

// List 列出系统成员
// GET /api/v1/member
// 响应: []respond.MemberRespond
func (h *MemberHandler) List(c *gin.Context) {
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	members, err := h.memberSvc.List(c.Request.Context(), sys.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewMemberListRespond(members))
}

// Create 创建成员
// POST /api/v1/member
// 请求体: request.CreateMemberRequest
// 响应: respond.MemberRespond
func (h *MemberHandler) Create(c *gin.Context) {
	var req request.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	m, err := h.memberSvc.Create(c.Request.Context(), sys.ID, req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewMemberRespond(m))
}

// Get 查询成员
// GET /api/v1/member/:hid
// 响应: respond.MemberRespond
func (h *MemberHandler) Get(c *gin.Context) {
	var uri request.MemberHidUri
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	m, err := h.memberSvc.Get(c.Request.Context(), sys.ID, uri.Hid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewMemberRespond(m))
}

// Update 修改成员资料
// PATCH /api/v1/member/:hid
// 请求体: request.UpdateMemberRequest
// 响应: respond.MemberRespond
func (h *MemberHandler) Update(c *gin.Context) {
	var uri request.MemberHidUri
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	var req request.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}

	var updates []member.Update
	if req.Name != nil {
		updates = append(updates, member.SetName{Name: *req.Name})
	}
	if req.Description != nil {
		updates = append(updates, member.SetDescription{Description: *req.Description})
	}
	if req.Pronouns != nil {
		updates = append(updates, member.SetPronouns{Pronouns: *req.Pronouns})
	}
	if req.Color != nil {
		updates = append(updates, member.SetColor{Color: *req.Color})
	}
	if req.AvatarURL != nil {
		updates = append(updates, member.SetAvatar{URL: *req.AvatarURL})
	}
	if req.ProxyTags != nil {
		updates = append(updates, member.SetProxyTags{Prefix: req.ProxyTags.Prefix, Suffix: req.ProxyTags.Suffix})
	}

	m, err := h.memberSvc.Update(c.Request.Context(), sys.ID, uri.Hid, updates...)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewMemberRespond(m))
}

// Delete 删除成员
// DELETE /api/v1/member/:hid
// 响应: nil
func (h *MemberHandler) Delete(c *gin.Context) {
	var uri request.MemberHidUri
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	sys, ok := currentSystem(c, h.systemSvc)
	if !ok {
		return
	}
	if err := h.memberSvc.Delete(c.Request.Context(), sys.ID, uri.Hid); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

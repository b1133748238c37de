// Package handler 提供 HTTP 请求处理器
// 本文件处理代理消息查询
package handler

import (
	"plural_proxy_server/internal/dto/request"
	"plural_proxy_server/internal/dto/respond"
	"plural_proxy_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 代理消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Info 查询代理消息的身份记录
// GET /api/v1/message/:id
// 响应: respond.MessageInfoRespond
func (h *MessageHandler) Info(c *gin.Context) {
	var uri request.MessageIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	info, err := h.messageSvc.Info(c.Request.Context(), uri.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewMessageInfoRespond(info))
}

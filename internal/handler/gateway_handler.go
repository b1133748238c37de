// Package handler 提供 HTTP 请求处理器
// 本文件处理网关分发事件：代理新消息、同步删除
package handler

import (
	"context"
	"errors"

	"plural_proxy_server/internal/gateway/websocket"
	"plural_proxy_server/internal/service/proxy"
	"plural_proxy_server/pkg/errorx"

	"go.uber.org/zap"
)

// MessageRouter 代理路由
type MessageRouter interface {
	Route(ctx context.Context, msg proxy.IncomingMessage) (proxy.Result, error)
}

// DeletionReconciler 删除同步
type DeletionReconciler interface {
	OnReactionAdd(ctx context.Context, channelID, messageID, userID int64, emoji string) error
	OnMessageDelete(ctx context.Context, messageID int64) error
	OnMessageDeleteBulk(ctx context.Context, messageIDs []int64) error
}

// Notifier 以机器人身份向频道发消息
type Notifier interface {
	SendMessage(ctx context.Context, channelID int64, content string) (int64, error)
}

// BotIdentity 记录机器人自身账号 id
type BotIdentity interface {
	SetBotUserID(id int64)
}

// GatewayHandler 实现 websocket.EventHandler
type GatewayHandler struct {
	router     MessageRouter
	reconciler DeletionReconciler
	notifier   Notifier
	identity   BotIdentity
}

// NewGatewayHandler 创建网关事件处理器
func NewGatewayHandler(router MessageRouter, reconciler DeletionReconciler, notifier Notifier, identity BotIdentity) *GatewayHandler {
	return &GatewayHandler{
		router:     router,
		reconciler: reconciler,
		notifier:   notifier,
		identity:   identity,
	}
}

// OnReady 网关就绪
func (h *GatewayHandler) OnReady(botUserID int64) {
	if h.identity != nil && botUserID != 0 {
		h.identity.SetBotUserID(botUserID)
	}
}

// OnMessageCreate 尝试代理新消息
// 权限问题原样告知频道，区分"未代发"与"已代发但原消息未删除"
func (h *GatewayHandler) OnMessageCreate(ctx context.Context, evt websocket.MessageCreate) {
	msg := proxy.IncomingMessage{
		ID:        int64(evt.ID),
		ChannelID: int64(evt.ChannelID),
		GuildID:   int64(evt.GuildID),
		AuthorID:  int64(evt.Author.ID),
		AuthorBot: evt.Author.Bot || evt.WebhookID != 0,
		Content:   evt.Content,
	}
	for _, a := range evt.Attachments {
		msg.Attachments = append(msg.Attachments, proxy.Attachment{URL: a.URL, Filename: a.Filename})
	}

	res, err := h.router.Route(ctx, msg)
	if err == nil {
		if res.Outcome == proxy.OutcomeRouted {
			zap.L().Debug("message proxied",
				zap.Int64("channel_id", msg.ChannelID), zap.Int64("message_id", res.MessageID))
		}
		return
	}

	var notice string
	switch errorx.GetCode(err) {
	case errorx.CodeNoRelayPermission:
		notice = errorx.ErrNoRelayPermission.Msg
	case errorx.CodeNoDeletePermission:
		notice = errorx.ErrNoDeletePermission.Msg
	default:
		zap.L().Error("route message error", zap.Error(err),
			zap.Int64("channel_id", msg.ChannelID), zap.Int64("message_id", msg.ID))
		return
	}

	zap.L().Warn("proxy permission error", zap.Error(err), zap.Int64("channel_id", msg.ChannelID))
	if _, sendErr := h.notifier.SendMessage(ctx, msg.ChannelID, notice); sendErr != nil {
		zap.L().Warn("send permission notice error", zap.Error(sendErr), zap.Int64("channel_id", msg.ChannelID))
	}
}

// OnMessageDelete 单条删除
func (h *GatewayHandler) OnMessageDelete(ctx context.Context, evt websocket.MessageDelete) {
	if err := h.reconciler.OnMessageDelete(ctx, int64(evt.ID)); err != nil {
		zap.L().Error("reconcile message delete error", zap.Error(err), zap.Int64("message_id", int64(evt.ID)))
	}
}

// OnMessageDeleteBulk 批量删除
func (h *GatewayHandler) OnMessageDeleteBulk(ctx context.Context, evt websocket.MessageDeleteBulk) {
	ids := make([]int64, 0, len(evt.IDs))
	for _, id := range evt.IDs {
		ids = append(ids, int64(id))
	}
	if err := h.reconciler.OnMessageDeleteBulk(ctx, ids); err != nil {
		zap.L().Error("reconcile bulk delete error", zap.Error(err), zap.Int("count", len(ids)))
	}
}

// OnReactionAdd 撤回表情
func (h *GatewayHandler) OnReactionAdd(ctx context.Context, evt websocket.ReactionAdd) {
	err := h.reconciler.OnReactionAdd(ctx, int64(evt.ChannelID), int64(evt.MessageID), int64(evt.UserID), evt.Emoji.Name)
	if err == nil {
		return
	}
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && codeErr.Code == errorx.CodeNoDeletePermission {
		if _, sendErr := h.notifier.SendMessage(ctx, int64(evt.ChannelID), codeErr.Msg); sendErr != nil {
			zap.L().Warn("send permission notice error", zap.Error(sendErr))
		}
		return
	}
	zap.L().Error("reconcile reaction error", zap.Error(err), zap.Int64("message_id", int64(evt.MessageID)))
}

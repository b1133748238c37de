package websocket

import "context"

// EventHandler 分发事件的处理方
// 同一频道的事件按到达顺序串行调用
type EventHandler interface {
	OnReady(botUserID int64)
	OnMessageCreate(ctx context.Context, evt MessageCreate)
	OnMessageDelete(ctx context.Context, evt MessageDelete)
	OnMessageDeleteBulk(ctx context.Context, evt MessageDeleteBulk)
	OnReactionAdd(ctx context.Context, evt ReactionAdd)
}

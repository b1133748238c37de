package proxy

import (
	"context"
	"errors"

	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/infrastructure/mq"
	"plural_proxy_server/internal/infrastructure/platform"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/errorx"

	"go.uber.org/zap"
)

// Outcome 路由结果
type Outcome int

const (
	// OutcomeNotApplicable 不需要代理（机器人、私聊、无匹配）
	OutcomeNotApplicable Outcome = iota
	// OutcomeRouted 已代发
	OutcomeRouted
	// OutcomeDropped 匹配成功但既无文本也无附件，直接忽略
	OutcomeDropped
)

// String 用于日志与指标标签
func (o Outcome) String() string {
	switch o {
	case OutcomeRouted:
		return "routed"
	case OutcomeDropped:
		return "dropped"
	default:
		return "not_applicable"
	}
}

// Attachment 入站消息附件
type Attachment struct {
	URL      string
	Filename string
}

// IncomingMessage 入站消息
// GuildID 为 0 表示私聊
type IncomingMessage struct {
	ID          int64
	ChannelID   int64
	GuildID     int64
	AuthorID    int64
	AuthorBot   bool
	Content     string
	Attachments []Attachment
}

// Result 路由结果与代发后的新消息 id
type Result struct {
	Outcome   Outcome
	MessageID int64
	Member    *model.ProxyMember
}

// MemberSource 查询账号可代理的成员
type MemberSource interface {
	ProxyMembers(ctx context.Context, accountID int64) ([]model.ProxyMember, error)
}

// RouteObserver 路由结果观测回调
type RouteObserver interface {
	ObserveRoute(outcome string)
}

// Router 代理消息路由
type Router struct {
	members      MemberSource
	messages     repository.MessageRepository
	webhooks     *WebhookRegistry
	client       platform.Client
	bus          mq.EventBus
	deleteReason string
	observer     RouteObserver
}

// NewRouter 创建路由器；observer 可为 nil
func NewRouter(
	members MemberSource,
	messages repository.MessageRepository,
	webhooks *WebhookRegistry,
	client platform.Client,
	bus mq.EventBus,
	deleteReason string,
	observer RouteObserver,
) *Router {
	return &Router{
		members:      members,
		messages:     messages,
		webhooks:     webhooks,
		client:       client,
		bus:          bus,
		deleteReason: deleteReason,
		observer:     observer,
	}
}

// Route 处理一条入站消息
// 顺序：代发 -> 写身份记录 -> 发布事件 -> 删除原消息，任一步失败不会重复代发
// 返回的 error 中 CodeNoRelayPermission 表示未代发，CodeNoDeletePermission 表示已代发但原消息未删除
func (r *Router) Route(ctx context.Context, msg IncomingMessage) (Result, error) {
	res, err := r.route(ctx, msg)
	if r.observer != nil {
		outcome := res.Outcome.String()
		if err != nil && res.Outcome != OutcomeRouted {
			outcome = "failed"
		}
		r.observer.ObserveRoute(outcome)
	}
	return res, err
}

func (r *Router) route(ctx context.Context, msg IncomingMessage) (Result, error) {
	if msg.AuthorBot || msg.GuildID == 0 {
		return Result{Outcome: OutcomeNotApplicable}, nil
	}

	candidates, err := r.members.ProxyMembers(ctx, msg.AuthorID)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		return Result{Outcome: OutcomeNotApplicable}, nil
	}

	match, ok := MatchTags(candidates, msg.Content)
	if !ok {
		return Result{Outcome: OutcomeNotApplicable}, nil
	}
	if match.Content == "" && len(msg.Attachments) == 0 {
		return Result{Outcome: OutcomeDropped, Member: &match.Member}, nil
	}

	// 只转存第一个附件
	var file *platform.File
	if len(msg.Attachments) > 0 {
		if len(msg.Attachments) > 1 {
			zap.L().Info("only the first attachment is re-hosted",
				zap.Int64("message_id", msg.ID), zap.Int("attachments", len(msg.Attachments)))
		}
		att := msg.Attachments[0]
		data, err := r.client.DownloadAttachment(ctx, att.URL)
		if err != nil {
			return Result{}, errorx.Wrapf(err, errorx.CodePlatformError, "下载附件 message_id=%d", msg.ID)
		}
		file = &platform.File{Name: att.Filename, Data: data}
	}

	sentID, err := r.send(ctx, msg.ChannelID, platform.WebhookMessage{
		Username:  match.Member.FullName(),
		AvatarURL: match.Member.AvatarURL,
		Content:   match.Content,
		File:      file,
	})
	if err != nil {
		return Result{}, err
	}
	res := Result{Outcome: OutcomeRouted, MessageID: sentID, Member: &match.Member}

	// 身份记录必须先于删除原消息落库
	if err = r.messages.Create(ctx, &model.Message{
		MID:       sentID,
		ChannelID: msg.ChannelID,
		MemberID:  match.Member.ID,
		Sender:    msg.AuthorID,
		Content:   match.Content,
	}); err != nil {
		return res, err
	}

	payload := mq.MessageProxied{
		MessageID: sentID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
		Sender:    msg.AuthorID,
		Content:   match.Content,
		Member:    match.Member,
	}
	if file != nil {
		payload.Attachment = file.Name
	}
	publishEvent(ctx, r.bus, mq.EventMessageProxied, payload)

	if err = r.client.DeleteMessage(ctx, msg.ChannelID, msg.ID, r.deleteReason); err != nil {
		switch {
		case errors.Is(err, platform.ErrForbidden):
			return res, errorx.Wrap(err, errorx.CodeNoDeletePermission, errorx.ErrNoDeletePermission.Msg)
		case errors.Is(err, platform.ErrNotFound):
			// 原消息已被删除
		default:
			return res, errorx.Wrapf(err, errorx.CodePlatformError, "删除原消息 message_id=%d", msg.ID)
		}
	}

	zap.L().Debug("message proxied",
		zap.Int64("channel_id", msg.ChannelID),
		zap.Int64("message_id", sentID),
		zap.String("member_hid", match.Member.Hid))
	return res, nil
}

// send 通过频道 webhook 代发；存储的 webhook 在平台侧已失效时重新获取一次
func (r *Router) send(ctx context.Context, channelID int64, msg platform.WebhookMessage) (int64, error) {
	for attempt := 0; ; attempt++ {
		hook, err := r.webhooks.GetOrCreate(ctx, channelID)
		if err != nil {
			return 0, err
		}

		id, err := r.client.ExecuteWebhook(ctx, platform.Webhook{ID: hook.WebhookID, Token: hook.Token}, msg)
		switch {
		case err == nil:
			return id, nil
		case errors.Is(err, platform.ErrNotFound) && attempt == 0:
			zap.L().Warn("stored webhook is gone, provisioning a new one",
				zap.Int64("channel_id", channelID), zap.Int64("webhook_id", hook.WebhookID))
			if err = r.webhooks.Forget(ctx, channelID); err != nil {
				return 0, err
			}
		case errors.Is(err, platform.ErrForbidden):
			return 0, errorx.Wrap(err, errorx.CodeNoRelayPermission, errorx.ErrNoRelayPermission.Msg)
		default:
			return 0, errorx.Wrapf(err, errorx.CodePlatformError, "代发消息 channel_id=%d", channelID)
		}
	}
}

// publishEvent 发布事件，失败只记录日志
func publishEvent(ctx context.Context, bus mq.EventBus, eventType string, payload any) {
	if bus == nil {
		return
	}
	evt, err := mq.NewEvent(eventType, payload)
	if err == nil {
		err = bus.Publish(ctx, evt)
	}
	if err != nil {
		zap.L().Error("publish event failed", zap.String("event_type", eventType), zap.Error(err))
	}
}

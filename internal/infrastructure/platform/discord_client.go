package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"plural_proxy_server/pkg/constants"
	"plural_proxy_server/pkg/errorx"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// NewSession 创建 discordgo 会话，REST 与网关共用
// discordgo 的内部日志统一转到 zap
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Client = &http.Client{Timeout: 30 * time.Second}
	session.UserAgent = "DiscordBot (plural_proxy_server, 1.0)"
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			zap.L().Error(msg, zap.String("component", "discordgo"))
		case discordgo.LogWarning:
			zap.L().Warn(msg, zap.String("component", "discordgo"))
		case discordgo.LogInformational:
			zap.L().Info(msg, zap.String("component", "discordgo"))
		default:
			zap.L().Debug(msg, zap.String("component", "discordgo"))
		}
	}
	return session, nil
}

// DiscordClient 基于 discordgo 会话的平台客户端
// 429 限流与重试由 discordgo 处理
type DiscordClient struct {
	session   *discordgo.Session
	botUserID atomic.Int64
}

// NewDiscordClient 包装已创建的会话
func NewDiscordClient(session *discordgo.Session) *DiscordClient {
	return &DiscordClient{session: session}
}

// FetchBotUser 查询并缓存机器人账号 id
func (c *DiscordClient) FetchBotUser(ctx context.Context) (int64, error) {
	user, err := c.session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return 0, mapError(err, "查询机器人账号")
	}
	id := parseID(user.ID)
	c.botUserID.Store(id)
	return id, nil
}

// SetBotUserID 网关 READY 事件中得到的机器人 id
func (c *DiscordClient) SetBotUserID(id int64) {
	c.botUserID.Store(id)
}

// BotUserID 当前机器人账号 id
func (c *DiscordClient) BotUserID() int64 {
	return c.botUserID.Load()
}

func toWebhook(w *discordgo.Webhook) Webhook {
	hook := Webhook{ID: parseID(w.ID), Token: w.Token, Name: w.Name}
	if w.User != nil {
		hook.UserID = parseID(w.User.ID)
	}
	return hook
}

// ChannelWebhooks 列出频道已有的 webhook
func (c *DiscordClient) ChannelWebhooks(ctx context.Context, channelID int64) ([]Webhook, error) {
	list, err := c.session.ChannelWebhooks(formatID(channelID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, "列出 webhook")
	}
	hooks := make([]Webhook, 0, len(list))
	for _, w := range list {
		if w == nil {
			continue
		}
		hooks = append(hooks, toWebhook(w))
	}
	return hooks, nil
}

// CreateWebhook 在频道中创建 webhook
func (c *DiscordClient) CreateWebhook(ctx context.Context, channelID int64, name string) (*Webhook, error) {
	w, err := c.session.WebhookCreate(formatID(channelID), name, "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, "创建 webhook")
	}
	hook := toWebhook(w)
	return &hook, nil
}

// ExecuteWebhook 以指定身份发送消息，wait=true 以拿到新消息 id
func (c *DiscordClient) ExecuteWebhook(ctx context.Context, hook Webhook, msg WebhookMessage) (int64, error) {
	params := &discordgo.WebhookParams{
		Content:   msg.Content,
		Username:  msg.Username,
		AvatarURL: msg.AvatarURL,
	}
	if msg.File != nil {
		params.Files = []*discordgo.File{{
			Name:   msg.File.Name,
			Reader: bytes.NewReader(msg.File.Data),
		}}
	}
	created, err := c.session.WebhookExecute(formatID(hook.ID), hook.Token, true, params, discordgo.WithContext(ctx))
	if err != nil {
		return 0, mapError(err, "执行 webhook")
	}
	if created == nil {
		return 0, errorx.New(errorx.CodePlatformError, "执行 webhook 未返回消息")
	}
	return parseID(created.ID), nil
}

// DeleteMessage 删除消息，reason 写入审计日志
func (c *DiscordClient) DeleteMessage(ctx context.Context, channelID, messageID int64, reason string) error {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(reason))
	}
	if err := c.session.ChannelMessageDelete(formatID(channelID), formatID(messageID), opts...); err != nil {
		return mapError(err, "删除消息")
	}
	return nil
}

// SendMessage 以机器人身份发送纯文本消息
func (c *DiscordClient) SendMessage(ctx context.Context, channelID int64, content string) (int64, error) {
	created, err := c.session.ChannelMessageSend(formatID(channelID), content, discordgo.WithContext(ctx))
	if err != nil {
		return 0, mapError(err, "发送消息")
	}
	return parseID(created.ID), nil
}

// DownloadAttachment 从 CDN 下载附件，超过上限直接拒绝
func (c *DiscordClient) DownloadAttachment(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.session.UserAgent)
	resp, err := c.session.Client.Do(req)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodePlatformError, "下载附件")
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, errorx.Newf(errorx.CodePlatformError, "下载附件 status=%d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.ATTACHMENT_MAX_SIZE+1))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodePlatformError, "读取附件")
	}
	if len(data) > constants.ATTACHMENT_MAX_SIZE {
		return nil, errorx.New(errorx.CodePlatformError, "附件超过大小上限")
	}
	return data, nil
}

// mapError 403/404 转为哨兵错误，其余包装为平台错误
func mapError(err error, op string) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return ErrForbidden
		case http.StatusNotFound:
			return ErrNotFound
		}
	}
	return errorx.Wrap(err, errorx.CodePlatformError, op)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// parseID 平台 id 以十进制字符串传输，非法值视为 0
func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

var _ Client = (*DiscordClient)(nil)

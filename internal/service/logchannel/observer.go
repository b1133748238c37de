// Package logchannel 将代理消息摘要转发到服务器配置的日志频道
package logchannel

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/infrastructure/mq"
	"plural_proxy_server/internal/infrastructure/platform"

	"go.uber.org/zap"
)

// maxQuoteLen 摘要中引用原文的最大字符数
const maxQuoteLen = 1000

// Observer 订阅 "消息已代理" 事件
type Observer struct {
	servers  repository.ServerRepository
	client   platform.Client
	linkBase string
}

// NewObserver 创建日志频道观察者，linkBase 为空时摘要中不附链接
func NewObserver(servers repository.ServerRepository, client platform.Client, linkBase string) *Observer {
	return &Observer{
		servers:  servers,
		client:   client,
		linkBase: strings.TrimRight(linkBase, "/"),
	}
}

// SetLogChannel 设置服务器的日志频道，channelID 为 0 表示关闭
func (o *Observer) SetLogChannel(ctx context.Context, guildID, channelID int64) error {
	if err := o.servers.SetLogChannel(ctx, guildID, channelID); err != nil {
		return err
	}
	zap.L().Info("log channel updated", zap.Int64("guild_id", guildID), zap.Int64("channel_id", channelID))
	return nil
}

// Handle 事件订阅入口，失败只记录日志
func (o *Observer) Handle(ctx context.Context, evt mq.Event) {
	if evt.Type != mq.EventMessageProxied {
		return
	}
	var payload mq.MessageProxied
	if err := evt.Decode(&payload); err != nil {
		zap.L().Error("decode message_proxied payload error", zap.Error(err), zap.String("event_id", evt.ID))
		return
	}
	if payload.GuildID == 0 {
		return
	}

	server, err := o.servers.Find(ctx, payload.GuildID)
	if err != nil {
		zap.L().Error("find server config error", zap.Error(err), zap.Int64("guild_id", payload.GuildID))
		return
	}
	if server == nil || server.LogChannel == 0 {
		return
	}

	if _, err := o.client.SendMessage(ctx, server.LogChannel, o.summary(&payload)); err != nil {
		zap.L().Warn("post to log channel error", zap.Error(err),
			zap.Int64("guild_id", payload.GuildID), zap.Int64("channel_id", server.LogChannel))
	}
}

// summary 日志频道中的一行摘要加引用原文
func (o *Observer) summary(p *mq.MessageProxied) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<#%d>: **%s** (`%s`/`%s`) sent by <@%d>",
		p.ChannelID, p.Member.Name, p.Member.SystemHid, p.Member.Hid, p.Sender)
	if o.linkBase != "" {
		fmt.Fprintf(&b, " %s/%d/%d/%d", o.linkBase, p.GuildID, p.ChannelID, p.MessageID)
	}

	content := p.Content
	if utf8.RuneCountInString(content) > maxQuoteLen {
		content = string([]rune(content)[:maxQuoteLen]) + "…"
	}
	if content != "" {
		for _, line := range strings.Split(content, "\n") {
			b.WriteString("\n> ")
			b.WriteString(line)
		}
	}
	if p.Attachment != "" {
		b.WriteString("\n")
		b.WriteString(p.Attachment)
	}
	return b.String()
}

// Package platform 封装聊天平台的 REST 接口
// 核心服务只依赖 Client 接口，便于替换实现与测试
package platform

import (
	"context"
	"errors"
)

var (
	// ErrForbidden 平台拒绝操作（缺少权限）
	ErrForbidden = errors.New("platform: forbidden")
	// ErrNotFound 目标资源不存在
	ErrNotFound = errors.New("platform: not found")
)

// Webhook 频道中的 webhook
type Webhook struct {
	ID     int64
	Token  string
	Name   string
	UserID int64 // 创建者
}

// File 随消息上传的附件
type File struct {
	Name string
	Data []byte
}

// WebhookMessage 通过 webhook 发送的消息
type WebhookMessage struct {
	Username  string
	AvatarURL string
	Content   string
	File      *File
}

// Client 平台能力接口
type Client interface {
	// BotUserID 当前机器人账号 id
	BotUserID() int64
	// ChannelWebhooks 列出频道已有的 webhook
	ChannelWebhooks(ctx context.Context, channelID int64) ([]Webhook, error)
	// CreateWebhook 在频道中创建 webhook
	CreateWebhook(ctx context.Context, channelID int64, name string) (*Webhook, error)
	// ExecuteWebhook 以指定身份发送消息并等待返回新消息 id
	ExecuteWebhook(ctx context.Context, hook Webhook, msg WebhookMessage) (int64, error)
	// DeleteMessage 删除消息，reason 写入审计日志
	DeleteMessage(ctx context.Context, channelID, messageID int64, reason string) error
	// SendMessage 以机器人身份发送纯文本消息
	SendMessage(ctx context.Context, channelID int64, content string) (int64, error)
	// DownloadAttachment 下载附件内容
	DownloadAttachment(ctx context.Context, url string) ([]byte, error)
}

// Package mq 提供代理事件的发布订阅
// 支持进程内 Channel 与 Kafka 两种实现，由 kafkaConfig.messageMode 选择
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"plural_proxy_server/internal/model"

	"github.com/google/uuid"
)

// 事件类型
const (
	EventMessageProxied      = "message_proxied"
	EventProxyMessageDeleted = "proxy_message_deleted"
)

// ErrBusClosed 总线已关闭
var ErrBusClosed = errors.New("mq: event bus closed")

// Event 事件信封
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent 构造事件，payload 序列化为 JSON
func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Decode 将 Payload 反序列化到 v
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// MessageProxied "消息已代理" 事件负载
type MessageProxied struct {
	MessageID  int64             `json:"message_id,string"`
	ChannelID  int64             `json:"channel_id,string"`
	GuildID    int64             `json:"guild_id,string"`
	Sender     int64             `json:"sender,string"`
	Content    string            `json:"content"`
	Attachment string            `json:"attachment,omitempty"`
	Member     model.ProxyMember `json:"member"`
}

// ProxyMessageDeleted "代理消息已删除" 事件负载
type ProxyMessageDeleted struct {
	Message model.MessageInfo `json:"message"`
}

// Handler 事件处理函数
type Handler func(ctx context.Context, evt Event)

// EventBus 事件总线接口
type EventBus interface {
	// Publish 发布事件
	Publish(ctx context.Context, evt Event) error
	// Subscribe 注册处理函数，须在 Start 之前调用
	Subscribe(h Handler)
	// Start 启动消费循环
	Start()
	// Close 停止消费并释放资源
	Close()
}

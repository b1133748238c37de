package mq

import (
	"context"
	"sync"

	"plural_proxy_server/pkg/constants"

	"go.uber.org/zap"
)

// ChannelBus 单机模式：进程内缓冲通道
type ChannelBus struct {
	events   chan Event
	quit     chan struct{}
	done     chan struct{}
	handlers []Handler
	mu       sync.RWMutex
	once     sync.Once
	started  bool
}

// NewChannelBus 创建进程内事件总线
func NewChannelBus() *ChannelBus {
	return &ChannelBus{
		events: make(chan Event, constants.CHANNEL_SIZE),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Publish 写入通道；通道满时阻塞直到 ctx 结束
func (b *ChannelBus) Publish(ctx context.Context, evt Event) error {
	select {
	case <-b.quit:
		return ErrBusClosed
	default:
	}
	select {
	case b.events <- evt:
		return nil
	case <-b.quit:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe 注册处理函数
func (b *ChannelBus) Subscribe(h Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Start 启动消费协程
func (b *ChannelBus) Start() {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	go func() {
		defer close(b.done)
		for {
			select {
			case evt := <-b.events:
				b.dispatch(evt)
			case <-b.quit:
				// 处理剩余事件后退出
				for {
					select {
					case evt := <-b.events:
						b.dispatch(evt)
					default:
						return
					}
				}
			}
		}
	}()
}

// dispatch 依次调用处理函数，单个处理函数 panic 不影响其他订阅者
func (b *ChannelBus) dispatch(evt Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()
	for _, h := range handlers {
		safeHandle(h, evt)
	}
}

// Close 停止消费协程，等待已入队事件处理完毕
func (b *ChannelBus) Close() {
	b.once.Do(func() {
		close(b.quit)
		b.mu.RLock()
		started := b.started
		b.mu.RUnlock()
		if started {
			<-b.done
		}
	})
}

func safeHandle(h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("event handler panic",
				zap.String("event_type", evt.Type),
				zap.String("event_id", evt.ID),
				zap.Any("recover", r))
		}
	}()
	h(context.Background(), evt)
}

var _ EventBus = (*ChannelBus)(nil)

// Package websocket 接收聊天平台网关事件
// 连接、心跳与断线恢复由 discordgo 完成，本包负责把事件转换后交给按频道分片的 Worker 处理
package websocket

import (
	"context"
	"fmt"
	"sync"

	"plural_proxy_server/pkg/constants"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Gateway 网关事件源
type Gateway struct {
	session *discordgo.Session
	handler EventHandler

	shards []chan func(ctx context.Context)
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewGateway 创建网关事件源，workers 为事件处理分片数
func NewGateway(session *discordgo.Session, intents, workers int, handler EventHandler) *Gateway {
	if workers <= 0 {
		workers = constants.DISPATCH_WORKERS
	}
	session.Identify.Intents = discordgo.Intent(intents)
	// 在读循环中同步回调，入队顺序即到达顺序
	session.SyncEvents = true
	session.ShouldReconnectOnError = true
	return &Gateway{
		session: session,
		handler: handler,
		shards:  make([]chan func(ctx context.Context), workers),
		done:    make(chan struct{}),
	}
}

// Run 打开网关连接并处理事件，直到 ctx 取消
func (g *Gateway) Run(ctx context.Context) error {
	g.startWorkers(ctx)
	defer g.stopWorkers()

	for _, h := range []interface{}{
		g.onReady,
		g.onMessageCreate,
		g.onMessageDelete,
		g.onMessageDeleteBulk,
		g.onReactionAdd,
	} {
		remove := g.session.AddHandler(h)
		defer remove()
	}

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	zap.L().Info("gateway connected")

	<-ctx.Done()
	if err := g.session.Close(); err != nil {
		zap.L().Warn("close gateway error", zap.Error(err))
	}
	return nil
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	var botID ID
	if r.User != nil {
		botID = parseID(r.User.ID)
	}
	zap.L().Info("gateway ready", zap.String("session_id", r.SessionID), zap.Int64("bot_user_id", int64(botID)))
	g.handler.OnReady(int64(botID))
}

func (g *Gateway) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil {
		return
	}
	evt := toMessageCreate(m.Message)
	g.enqueue(int64(evt.ChannelID), func(ctx context.Context) { g.handler.OnMessageCreate(ctx, evt) })
}

func (g *Gateway) onMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m.Message == nil {
		return
	}
	evt := toMessageDelete(m.Message)
	g.enqueue(int64(evt.ChannelID), func(ctx context.Context) { g.handler.OnMessageDelete(ctx, evt) })
}

func (g *Gateway) onMessageDeleteBulk(_ *discordgo.Session, m *discordgo.MessageDeleteBulk) {
	evt := toMessageDeleteBulk(m)
	g.enqueue(int64(evt.ChannelID), func(ctx context.Context) { g.handler.OnMessageDeleteBulk(ctx, evt) })
}

func (g *Gateway) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil {
		return
	}
	evt := toReactionAdd(r.MessageReaction)
	g.enqueue(int64(evt.ChannelID), func(ctx context.Context) { g.handler.OnReactionAdd(ctx, evt) })
}

// startWorkers 每个分片一个 Worker，保证同频道事件串行
func (g *Gateway) startWorkers(ctx context.Context) {
	for i := range g.shards {
		ch := make(chan func(ctx context.Context), constants.CHANNEL_SIZE)
		g.shards[i] = ch
		g.wg.Add(1)
		go g.worker(ctx, ch)
	}
	zap.L().Info("Gateway dispatch workers started", zap.Int("workers", len(g.shards)))
}

func (g *Gateway) worker(ctx context.Context, tasks <-chan func(ctx context.Context)) {
	defer g.wg.Done()
	for {
		select {
		case <-g.done:
			return
		case task := <-tasks:
			g.run(ctx, task)
		}
	}
}

// run 执行任务，panic 不影响 Worker 继续消费
func (g *Gateway) run(ctx context.Context, task func(ctx context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Gateway Worker panic", zap.Any("recover", rec))
		}
	}()
	task(ctx)
}

// enqueue 队列满时阻塞读循环，形成背压；停止后丢弃
func (g *Gateway) enqueue(channelID int64, task func(ctx context.Context)) {
	shard := g.shards[uint64(channelID)%uint64(len(g.shards))]
	select {
	case shard <- task:
	case <-g.done:
	}
}

func (g *Gateway) stopWorkers() {
	close(g.done)
	g.wg.Wait()
}

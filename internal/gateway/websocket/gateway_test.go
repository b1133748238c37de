package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler 将事件写入通道
type recordingHandler struct {
	mu      sync.Mutex
	botID   int64
	created chan MessageCreate
	deleted chan MessageDelete
	bulk    chan MessageDeleteBulk
	reacted chan ReactionAdd
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		created: make(chan MessageCreate, 10),
		deleted: make(chan MessageDelete, 10),
		bulk:    make(chan MessageDeleteBulk, 10),
		reacted: make(chan ReactionAdd, 10),
	}
}

func (h *recordingHandler) OnReady(botUserID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.botID = botUserID
}

func (h *recordingHandler) OnMessageCreate(ctx context.Context, evt MessageCreate) { h.created <- evt }

func (h *recordingHandler) OnMessageDelete(ctx context.Context, evt MessageDelete) { h.deleted <- evt }

func (h *recordingHandler) OnMessageDeleteBulk(ctx context.Context, evt MessageDeleteBulk) {
	h.bulk <- evt
}

func (h *recordingHandler) OnReactionAdd(ctx context.Context, evt ReactionAdd) { h.reacted <- evt }

func (h *recordingHandler) bot() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.botID
}

func newTestGateway(t *testing.T, workers int, h EventHandler) *Gateway {
	t.Helper()
	session, err := discordgo.New("Bot secret")
	require.NoError(t, err)
	g := NewGateway(session, 513, workers, h)
	g.startWorkers(context.Background())
	t.Cleanup(g.stopWorkers)
	return g
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		var zero T
		return zero
	}
}

func TestNewGatewayConfiguresSession(t *testing.T) {
	session, err := discordgo.New("Bot secret")
	require.NoError(t, err)
	g := NewGateway(session, 513, 0, newRecordingHandler())

	assert.Equal(t, discordgo.Intent(513), session.Identify.Intents)
	assert.True(t, session.SyncEvents)
	assert.NotEmpty(t, g.shards)
}

func TestGatewayConvertsAndDispatches(t *testing.T) {
	h := newRecordingHandler()
	g := newTestGateway(t, 4, h)

	g.onReady(nil, &discordgo.Ready{SessionID: "abc", User: &discordgo.User{ID: "1000", Bot: true}})
	g.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "300",
		ChannelID: "20",
		GuildID:   "10",
		Content:   "a: hi",
		Author:    &discordgo.User{ID: "42"},
		Attachments: []*discordgo.MessageAttachment{
			{URL: "https://cdn/x.png", Filename: "x.png"},
		},
	}})
	g.onMessageDelete(nil, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "301", ChannelID: "20"}})
	g.onMessageDeleteBulk(nil, &discordgo.MessageDeleteBulk{Messages: []string{"302", "303"}, ChannelID: "20"})
	g.onReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID:    "42",
		ChannelID: "20",
		MessageID: "304",
		Emoji:     discordgo.Emoji{Name: "❌"},
	}})

	assert.Equal(t, int64(1000), h.bot())

	created := waitFor(t, h.created)
	assert.Equal(t, ID(300), created.ID)
	assert.Equal(t, ID(10), created.GuildID)
	assert.Equal(t, ID(42), created.Author.ID)
	assert.Zero(t, created.WebhookID)
	require.Len(t, created.Attachments, 1)
	assert.Equal(t, "x.png", created.Attachments[0].Filename)

	assert.Equal(t, ID(301), waitFor(t, h.deleted).ID)
	assert.Equal(t, []ID{302, 303}, waitFor(t, h.bulk).IDs)
	reaction := waitFor(t, h.reacted)
	assert.Equal(t, "❌", reaction.Emoji.Name)
	assert.Zero(t, reaction.Emoji.ID)
	assert.Equal(t, ID(304), reaction.MessageID)
}

func TestGatewayKeepsChannelOrder(t *testing.T) {
	h := newRecordingHandler()
	g := newTestGateway(t, 3, h)

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		g.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{ID: id, ChannelID: "77"}})
	}
	for want := ID(1); want <= 5; want++ {
		assert.Equal(t, want, waitFor(t, h.created).ID)
	}
}

func TestGatewayIgnoresEmptyEvents(t *testing.T) {
	h := newRecordingHandler()
	g := newTestGateway(t, 1, h)

	g.onMessageCreate(nil, &discordgo.MessageCreate{})
	g.onMessageDelete(nil, &discordgo.MessageDelete{})
	g.onReactionAdd(nil, &discordgo.MessageReactionAdd{})
	g.onReady(nil, &discordgo.Ready{})

	assert.Zero(t, h.bot())
	assert.Empty(t, h.created)
	assert.Empty(t, h.deleted)
	assert.Empty(t, h.reacted)
}

func TestParseID(t *testing.T) {
	assert.Equal(t, ID(123), parseID("123"))
	assert.Zero(t, parseID(""))
	assert.Zero(t, parseID("abc"))
}

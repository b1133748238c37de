package proxy

import (
	"context"
	"sync"
	"testing"
	"time"

	"plural_proxy_server/internal/dao/mysql/dbtest"
	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/dao/redis/cachetest"
	"plural_proxy_server/internal/infrastructure/mq"
	"plural_proxy_server/internal/infrastructure/platform"
	"plural_proxy_server/internal/model"

	"github.com/stretchr/testify/require"
)

const (
	testBotID     = int64(1000)
	testHookName  = "Proxy Webhook"
	testReason    = "Deleted proxy trigger"
	testReactText = "Deleted by reaction"
	testCancel    = "❌"
)

type deleteCall struct {
	ChannelID int64
	MessageID int64
	Reason    string
}

type executeCall struct {
	Hook platform.Webhook
	Msg  platform.WebhookMessage
}

// fakeClient 内存版平台客户端
type fakeClient struct {
	mu sync.Mutex

	hooks       map[int64][]platform.Webhook
	goneHooks   map[int64]bool
	nextID      int64
	createCalls int
	listCalls   int

	createErr  error
	executeErr error
	deleteErr  error

	executed     []executeCall
	deleted      []deleteCall
	sent         []string
	attachments  map[string][]byte
	beforeDelete func()
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		hooks:       make(map[int64][]platform.Webhook),
		goneHooks:   make(map[int64]bool),
		nextID:      5000,
		attachments: make(map[string][]byte),
	}
}

func (c *fakeClient) BotUserID() int64 { return testBotID }

func (c *fakeClient) ChannelWebhooks(ctx context.Context, channelID int64) ([]platform.Webhook, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	if c.createErr != nil {
		return nil, c.createErr
	}
	out := make([]platform.Webhook, len(c.hooks[channelID]))
	copy(out, c.hooks[channelID])
	return out, nil
}

func (c *fakeClient) CreateWebhook(ctx context.Context, channelID int64, name string) (*platform.Webhook, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	// 放大并发窗口
	time.Sleep(5 * time.Millisecond)
	c.createCalls++
	c.nextID++
	hook := platform.Webhook{ID: c.nextID, Token: "token", Name: name, UserID: testBotID}
	c.hooks[channelID] = append(c.hooks[channelID], hook)
	return &hook, nil
}

func (c *fakeClient) ExecuteWebhook(ctx context.Context, hook platform.Webhook, msg platform.WebhookMessage) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.executeErr != nil {
		return 0, c.executeErr
	}
	if c.goneHooks[hook.ID] {
		return 0, platform.ErrNotFound
	}
	c.executed = append(c.executed, executeCall{Hook: hook, Msg: msg})
	c.nextID++
	return c.nextID, nil
}

func (c *fakeClient) DeleteMessage(ctx context.Context, channelID, messageID int64, reason string) error {
	if c.beforeDelete != nil {
		c.beforeDelete()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, deleteCall{ChannelID: channelID, MessageID: messageID, Reason: reason})
	return c.deleteErr
}

func (c *fakeClient) SendMessage(ctx context.Context, channelID int64, content string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, content)
	c.nextID++
	return c.nextID, nil
}

func (c *fakeClient) DownloadAttachment(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.attachments[url]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return data, nil
}

// recordingBus 同步记录发布的事件
type recordingBus struct {
	mu     sync.Mutex
	events []mq.Event
}

func (b *recordingBus) Publish(ctx context.Context, evt mq.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
	return nil
}

func (b *recordingBus) Subscribe(h mq.Handler) {}
func (b *recordingBus) Start()                 {}
func (b *recordingBus) Close()                 {}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

// staticMembers 固定的成员列表
type staticMembers map[int64][]model.ProxyMember

func (s staticMembers) ProxyMembers(ctx context.Context, accountID int64) ([]model.ProxyMember, error) {
	return s[accountID], nil
}

// seedProxyMember 写入系统、账号、成员并返回代理视图
func seedProxyMember(t *testing.T, repos *repository.Repositories, uid int64, prefix, suffix string) model.ProxyMember {
	t.Helper()
	ctx := context.Background()
	sys := &model.System{Hid: "sysaa", Name: "The System", Tag: "| sys"}
	require.NoError(t, repos.System.Create(ctx, sys))
	require.NoError(t, repos.Account.Link(ctx, uid, sys.ID))
	m := &model.Member{Hid: "memaa", SystemID: sys.ID, Name: "Alice", Prefix: prefix, Suffix: suffix,
		AvatarURL: "https://example.com/a.png"}
	require.NoError(t, repos.Member.Create(ctx, m))

	members, err := repos.Member.FindProxyMembersByAccount(ctx, uid)
	require.NoError(t, err)
	require.Len(t, members, 1)
	return members[0]
}

type fixture struct {
	repos      *repository.Repositories
	client     *fakeClient
	bus        *recordingBus
	cache      *cachetest.Cache
	registry   *WebhookRegistry
	router     *Router
	reconciler *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repos:  dbtest.Repos(t),
		client: newFakeClient(),
		bus:    &recordingBus{},
		cache:  cachetest.New(),
	}
	f.registry = NewWebhookRegistry(f.repos.Webhook, f.cache, f.client, testHookName, nil)
	f.reconciler = NewReconciler(f.repos.Message, f.client, f.bus, testCancel, testReactText)
	return f
}

func (f *fixture) withRouter(members MemberSource) *fixture {
	f.router = NewRouter(members, f.repos.Message, f.registry, f.client, f.bus, testReason, nil)
	return f
}

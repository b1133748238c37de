package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"plural_proxy_server/internal/dao/mysql/repository"
	myredis "plural_proxy_server/internal/dao/redis"
	"plural_proxy_server/internal/infrastructure/platform"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/constants"
	"plural_proxy_server/pkg/errorx"
	"plural_proxy_server/pkg/tokenseal"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// WebhookObserver webhook 创建的观测回调
type WebhookObserver interface {
	ObserveWebhookCreated()
}

// WebhookRegistry 频道中继端点注册表
// 查找顺序：缓存/数据库 -> 频道中由本机器人创建且名称一致的 webhook -> 新建
// 同一进程内对同一频道的并发首发通过 singleflight 合并；跨进程仍可能重复创建，
// 此时数据库以最后一次写入为准，多出的 webhook 不影响正确性
type WebhookRegistry struct {
	repo     repository.WebhookRepository
	cache    myredis.AsyncCacheService
	client   platform.Client
	name     string
	observer WebhookObserver
	group    singleflight.Group
}

// NewWebhookRegistry 创建注册表；cache 与 observer 可为 nil
func NewWebhookRegistry(
	repo repository.WebhookRepository,
	cache myredis.AsyncCacheService,
	client platform.Client,
	name string,
	observer WebhookObserver,
) *WebhookRegistry {
	return &WebhookRegistry{
		repo:     repo,
		cache:    cache,
		client:   client,
		name:     name,
		observer: observer,
	}
}

func webhookCacheKey(channelID int64) string {
	return constants.WebhookCacheKeyPrefix + strconv.FormatInt(channelID, 10)
}

// cachedWebhook 缓存中的 webhook，token 加密存放
type cachedWebhook struct {
	WebhookID int64  `json:"webhook_id,string"`
	Token     string `json:"token"`
}

// GetOrCreate 获取或创建频道的中继端点
// 平台拒绝创建时返回 ErrNoRelayPermission
func (r *WebhookRegistry) GetOrCreate(ctx context.Context, channelID int64) (*model.Webhook, error) {
	if hook := r.fromCache(ctx, channelID); hook != nil {
		return hook, nil
	}

	hook, err := r.repo.FindByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if hook != nil {
		r.toCache(ctx, hook)
		return hook, nil
	}

	v, err, _ := r.group.Do(strconv.FormatInt(channelID, 10), func() (any, error) {
		return r.provision(ctx, channelID)
	})
	if err != nil {
		return nil, err
	}
	provisioned := *v.(*model.Webhook)
	return &provisioned, nil
}

// provision 认领已有 webhook 或新建，并持久化
func (r *WebhookRegistry) provision(ctx context.Context, channelID int64) (*model.Webhook, error) {
	hooks, err := r.client.ChannelWebhooks(ctx, channelID)
	if err != nil {
		return nil, r.wrapPlatformError(err, channelID)
	}

	botID := r.client.BotUserID()
	var found *platform.Webhook
	for i := range hooks {
		if hooks[i].UserID == botID && hooks[i].Name == r.name && hooks[i].Token != "" {
			found = &hooks[i]
			break
		}
	}

	if found != nil {
		zap.L().Info("adopting existing webhook",
			zap.Int64("channel_id", channelID), zap.Int64("webhook_id", found.ID))
	} else {
		if found, err = r.client.CreateWebhook(ctx, channelID, r.name); err != nil {
			return nil, r.wrapPlatformError(err, channelID)
		}
		zap.L().Info("created webhook",
			zap.Int64("channel_id", channelID), zap.Int64("webhook_id", found.ID))
		if r.observer != nil {
			r.observer.ObserveWebhookCreated()
		}
	}

	hook := &model.Webhook{ChannelID: channelID, WebhookID: found.ID, Token: found.Token}
	if err = r.repo.Upsert(ctx, hook); err != nil {
		return nil, err
	}
	r.toCache(ctx, hook)
	return hook, nil
}

// Forget 删除失效的绑定（webhook 在平台侧已被删除）
func (r *WebhookRegistry) Forget(ctx context.Context, channelID int64) error {
	if r.cache != nil {
		if err := r.cache.Delete(ctx, webhookCacheKey(channelID)); err != nil {
			zap.L().Warn("delete webhook cache failed", zap.Int64("channel_id", channelID), zap.Error(err))
		}
	}
	return r.repo.DeleteByChannel(ctx, channelID)
}

func (r *WebhookRegistry) wrapPlatformError(err error, channelID int64) error {
	if errors.Is(err, platform.ErrForbidden) {
		return errorx.Wrap(err, errorx.CodeNoRelayPermission, errorx.ErrNoRelayPermission.Msg)
	}
	return errorx.Wrapf(err, errorx.CodePlatformError, "获取频道 webhook channel_id=%d", channelID)
}

func (r *WebhookRegistry) fromCache(ctx context.Context, channelID int64) *model.Webhook {
	if r.cache == nil {
		return nil
	}
	raw, err := r.cache.Get(ctx, webhookCacheKey(channelID))
	if err != nil {
		zap.L().Warn("read webhook cache failed", zap.Int64("channel_id", channelID), zap.Error(err))
		return nil
	}
	if raw == "" {
		return nil
	}

	var cached cachedWebhook
	if err = json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	token, err := tokenseal.Open(cached.Token)
	if err != nil {
		return nil
	}
	return &model.Webhook{ChannelID: channelID, WebhookID: cached.WebhookID, Token: token}
}

// toCache 异步回填缓存
func (r *WebhookRegistry) toCache(ctx context.Context, hook *model.Webhook) {
	if r.cache == nil {
		return
	}
	sealed, err := tokenseal.Seal(hook.Token)
	if err != nil {
		return
	}
	raw, err := json.Marshal(cachedWebhook{WebhookID: hook.WebhookID, Token: sealed})
	if err != nil {
		return
	}
	key := webhookCacheKey(hook.ChannelID)
	r.cache.SubmitTask(func() {
		if err := r.cache.Set(context.Background(), key, string(raw), constants.REDIS_TIMEOUT*time.Minute); err != nil {
			zap.L().Warn("write webhook cache failed", zap.String("key", key), zap.Error(err))
		}
	})
}

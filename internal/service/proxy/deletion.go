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

// Reconciler 代理消息删除同步
// 三种删除信号（撤回表情、单条删除、批量删除）共用同一清理逻辑；
// 身份记录删除以影响行数为准，同一条消息只会发出一次删除事件
type Reconciler struct {
	messages       repository.MessageRepository
	client         platform.Client
	bus            mq.EventBus
	cancelEmoji    string
	reactionReason string
}

// NewReconciler 创建删除同步器
func NewReconciler(
	messages repository.MessageRepository,
	client platform.Client,
	bus mq.EventBus,
	cancelEmoji string,
	reactionReason string,
) *Reconciler {
	return &Reconciler{
		messages:       messages,
		client:         client,
		bus:            bus,
		cancelEmoji:    cancelEmoji,
		reactionReason: reactionReason,
	}
}

// OnReactionAdd 撤回表情：仅原发送者添加指定表情时删除代理消息
func (r *Reconciler) OnReactionAdd(ctx context.Context, channelID, messageID, userID int64, emoji string) error {
	if emoji != r.cancelEmoji {
		return nil
	}

	info, err := r.messages.FindInfoBySender(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if info == nil {
		return nil
	}

	if _, err = r.handleDelete(ctx, info); err != nil {
		return err
	}

	// 表情只是信号，消息本身需要机器人删除
	if err = r.client.DeleteMessage(ctx, channelID, messageID, r.reactionReason); err != nil {
		switch {
		case errors.Is(err, platform.ErrNotFound):
			return nil
		case errors.Is(err, platform.ErrForbidden):
			return errorx.Wrap(err, errorx.CodeNoDeletePermission, "Missing permission to delete the proxied message.")
		default:
			return errorx.Wrapf(err, errorx.CodePlatformError, "删除代理消息 message_id=%d", messageID)
		}
	}
	return nil
}

// OnMessageDelete 单条删除
func (r *Reconciler) OnMessageDelete(ctx context.Context, messageID int64) error {
	info, err := r.messages.FindInfo(ctx, messageID)
	if err != nil {
		return err
	}
	if info == nil {
		return nil
	}
	_, err = r.handleDelete(ctx, info)
	return err
}

// OnMessageDeleteBulk 批量删除：逐条处理，单条失败不影响其余
func (r *Reconciler) OnMessageDeleteBulk(ctx context.Context, messageIDs []int64) error {
	var errs []error
	for _, id := range messageIDs {
		if err := r.OnMessageDelete(ctx, id); err != nil {
			zap.L().Error("reconcile bulk delete failed", zap.Int64("message_id", id), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// handleDelete 删除身份记录并发布事件，返回本次是否删除
func (r *Reconciler) handleDelete(ctx context.Context, info *model.MessageInfo) (bool, error) {
	deleted, err := r.messages.Delete(ctx, info.MID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}
	publishEvent(ctx, r.bus, mq.EventProxyMessageDeleted, mq.ProxyMessageDeleted{Message: *info})
	return true, nil
}

package repository

import (
	"context"

	"plural_proxy_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository 创建 webhook 绑定 Repository
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// FindByChannel 查找频道绑定
func (r *webhookRepository) FindByChannel(ctx context.Context, channelID int64) (*model.Webhook, error) {
	hook, err := findOptional[model.Webhook](r.db.WithContext(ctx), "channel_id = ?", channelID)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询频道 webhook channel_id=%d", channelID)
	}
	return hook, nil
}

// Upsert 写入频道绑定
// 并发首发时两个实例可能各自创建了 webhook，以最后一次写入为准
func (r *webhookRepository) Upsert(ctx context.Context, hook *model.Webhook) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"webhook_id", "token"}),
	}).Create(hook).Error
	if err != nil {
		return wrapDBErrorf(err, "保存频道 webhook channel_id=%d", hook.ChannelID)
	}
	return nil
}

// DeleteByChannel 删除频道绑定
func (r *webhookRepository) DeleteByChannel(ctx context.Context, channelID int64) error {
	if err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).
		Delete(&model.Webhook{}).Error; err != nil {
		return wrapDBErrorf(err, "删除频道 webhook channel_id=%d", channelID)
	}
	return nil
}

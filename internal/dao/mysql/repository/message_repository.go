package repository

import (
	"context"
	"errors"

	"plural_proxy_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建身份记录 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 写入身份记录
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBErrorf(err, "创建身份记录 mid=%d", message.MID)
	}
	return nil
}

// infoQuery 身份记录联表查询
func (r *messageRepository) infoQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("messages").
		Select("messages.mid, messages.channel_id, messages.member_id, messages.sender, messages.content, " +
			"members.name, members.hid, members.avatar_url, systems.name AS system_name, systems.hid AS system_hid").
		Joins("JOIN members ON members.id = messages.member_id").
		Joins("JOIN systems ON systems.id = members.system_id")
}

// FindInfo 按代理消息 id 查找
func (r *messageRepository) FindInfo(ctx context.Context, mid int64) (*model.MessageInfo, error) {
	var info model.MessageInfo
	err := r.infoQuery(ctx).Where("messages.mid = ?", mid).Take(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "查询身份记录 mid=%d", mid)
	}
	return &info, nil
}

// FindInfoBySender 按代理消息 id + 原发送账号查找
func (r *messageRepository) FindInfoBySender(ctx context.Context, mid int64, sender int64) (*model.MessageInfo, error) {
	var info model.MessageInfo
	err := r.infoQuery(ctx).Where("messages.mid = ? AND messages.sender = ?", mid, sender).Take(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "查询身份记录 mid=%d sender=%d", mid, sender)
	}
	return &info, nil
}

// Delete 删除身份记录
// 以 RowsAffected 判断是否由本次调用删除，保证并发删除信号只有一方成功
func (r *messageRepository) Delete(ctx context.Context, mid int64) (bool, error) {
	result := r.db.WithContext(ctx).Where("mid = ?", mid).Delete(&model.Message{})
	if result.Error != nil {
		return false, wrapDBErrorf(result.Error, "删除身份记录 mid=%d", mid)
	}
	return result.RowsAffected > 0, nil
}

// DeleteByMember 删除成员的全部身份记录
func (r *messageRepository) DeleteByMember(ctx context.Context, memberID uint) error {
	if err := r.db.WithContext(ctx).Where("member_id = ?", memberID).
		Delete(&model.Message{}).Error; err != nil {
		return wrapDBErrorf(err, "删除成员身份记录 member_id=%d", memberID)
	}
	return nil
}

// Package model 定义数据库实体模型
// 本文件定义频道与 webhook 的绑定
package model

import (
	"plural_proxy_server/pkg/tokenseal"

	"gorm.io/gorm"
)

// Webhook 频道中继端点绑定
// 每个频道至多一条记录
type Webhook struct {
	ChannelID int64 `gorm:"column:channel_id;primaryKey;autoIncrement:false;comment:频道id"`
	WebhookID int64 `gorm:"column:webhook_id;not null;comment:webhook id"`

	// Token webhook 密钥，落库前加密
	Token string `gorm:"column:token;type:varchar(255);not null;comment:webhook token"`
}

// TableName 指定表名
func (Webhook) TableName() string {
	return "webhooks"
}

// BeforeSave GORM Hook：写库前加密 Token
func (w *Webhook) BeforeSave(tx *gorm.DB) error {
	sealed, err := tokenseal.Seal(w.Token)
	if err != nil {
		return err
	}
	w.Token = sealed
	return nil
}

// AfterSave 写库后还原明文，调用方持有的对象保持可用
func (w *Webhook) AfterSave(tx *gorm.DB) error {
	return w.AfterFind(tx)
}

// AfterFind GORM Hook：读库后解密 Token
func (w *Webhook) AfterFind(tx *gorm.DB) error {
	plain, err := tokenseal.Open(w.Token)
	if err != nil {
		return err
	}
	w.Token = plain
	return nil
}

// Package model 定义数据库实体模型
// 本文件定义代理消息的身份记录
package model

import "time"

// Message 代理消息身份记录
// 以代理后的新消息 id 为主键，关联成员、频道与原发送账号
type Message struct {
	MID       int64     `gorm:"column:mid;primaryKey;autoIncrement:false;comment:代理消息id"`
	ChannelID int64     `gorm:"column:channel_id;index;not null;comment:频道id"`
	MemberID  uint      `gorm:"column:member_id;index;not null;comment:成员id"`
	Sender    int64     `gorm:"column:sender;index;not null;comment:原发送账号"`
	Content   string    `gorm:"column:content;type:TEXT;comment:去除标签后的内容"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// MessageInfo 身份记录 + 成员与系统信息
// MID 的默认列名会被推导为 m_id，须显式指定
type MessageInfo struct {
	MID        int64 `gorm:"column:mid"`
	ChannelID  int64
	MemberID   uint
	Sender     int64
	Content    string
	Name       string
	Hid        string
	AvatarURL  string
	SystemName string
	SystemHid  string
}

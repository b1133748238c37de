// Package model 定义数据库实体模型
// 本文件定义系统与账号模型
package model

import "time"

// System 系统模型
// 一个系统包含多个成员，可关联多个平台账号
type System struct {
	ID uint `gorm:"primarykey"`

	// Hid 对外公开的 5 位短 id
	Hid string `gorm:"column:hid;uniqueIndex;type:char(5);not null;comment:公开短id"`

	Name        string `gorm:"column:name;type:varchar(100);comment:系统名称"`
	Description string `gorm:"column:description;type:TEXT;comment:系统描述"`

	// Tag 追加在代理显示名之后的标签
	Tag string `gorm:"column:tag;type:varchar(32);comment:系统标签"`

	AvatarURL string    `gorm:"column:avatar_url;type:varchar(255);comment:头像"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName 指定表名
func (System) TableName() string {
	return "systems"
}

// Account 平台账号与系统的绑定
// 一个账号最多属于一个系统
type Account struct {
	UID      int64 `gorm:"column:uid;primaryKey;autoIncrement:false;comment:平台账号id"`
	SystemID uint  `gorm:"column:system_id;index;not null;comment:所属系统"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}

// Server 服务器（guild）级配置
type Server struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement:false;comment:服务器id"`

	// LogChannel 代理日志频道，0 表示未设置
	LogChannel int64 `gorm:"column:log_channel;comment:日志频道id"`
}

// TableName 指定表名
func (Server) TableName() string {
	return "servers"
}

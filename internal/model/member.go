// Package model 定义数据库实体模型
// 本文件定义成员模型
package model

import (
	"time"
	"unicode/utf8"
)

// Member 系统成员
// Prefix 与 Suffix 均为空时该成员不参与代理匹配
type Member struct {
	ID       uint   `gorm:"primarykey"`
	Hid      string `gorm:"column:hid;uniqueIndex;type:char(5);not null;comment:公开短id"`
	SystemID uint   `gorm:"column:system_id;index;not null;comment:所属系统"`

	Name        string `gorm:"column:name;type:varchar(100);not null;comment:显示名"`
	Color       string `gorm:"column:color;type:char(6);comment:颜色"`
	AvatarURL   string `gorm:"column:avatar_url;type:varchar(255);comment:头像"`
	Pronouns    string `gorm:"column:pronouns;type:varchar(100);comment:代词"`
	Description string `gorm:"column:description;type:TEXT;comment:描述"`

	// 代理标签
	Prefix string `gorm:"column:prefix;type:varchar(100);comment:代理前缀"`
	Suffix string `gorm:"column:suffix;type:varchar(100);comment:代理后缀"`

	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName 指定表名
func (Member) TableName() string {
	return "members"
}

// Proxyable 是否设置了任一代理标签
func (m *Member) Proxyable() bool {
	return m.Prefix != "" || m.Suffix != ""
}

// ProxyMember 代理匹配所需的成员视图（成员 + 所属系统信息）
type ProxyMember struct {
	ID         uint
	Hid        string
	Prefix     string
	Suffix     string
	Color      string
	Name       string
	AvatarURL  string
	Tag        string // 系统标签
	SystemName string
	SystemHid  string
}

// FullName 代理消息的显示名：成员名 + 空格 + 系统标签
func (m *ProxyMember) FullName() string {
	if m.Tag != "" {
		return m.Name + " " + m.Tag
	}
	return m.Name
}

// DisplayNameLen 代理显示名长度（按字符计），与 FullName 的拼接规则一致
func DisplayNameLen(name, tag string) int {
	n := utf8.RuneCountInString(name)
	if tag != "" {
		n += 1 + utf8.RuneCountInString(tag)
	}
	return n
}

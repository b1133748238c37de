// Package model 定义数据库实体模型
// 本文件定义前台切换记录
package model

import "time"

// Switch 切换事件
// 同一系统内按 (SwitchedAt, ID) 全序
type Switch struct {
	ID         uint           `gorm:"primarykey"`
	SystemID   uint           `gorm:"column:system_id;index:idx_system_switched;not null;comment:所属系统"`
	SwitchedAt time.Time      `gorm:"column:switched_at;index:idx_system_switched;not null;comment:切换时间"`
	Members    []SwitchMember `gorm:"foreignKey:SwitchID"`
}

// TableName 指定表名
func (Switch) TableName() string {
	return "switches"
}

// MemberIDs 按 Position 顺序返回成员 id
// 调用方需保证 Members 已按 position 排序加载
func (s *Switch) MemberIDs() []uint {
	ids := make([]uint, 0, len(s.Members))
	for _, m := range s.Members {
		ids = append(ids, m.MemberID)
	}
	return ids
}

// SwitchMember 切换事件中的一位成员
// Position 记录提交时的顺序
type SwitchMember struct {
	ID       uint `gorm:"primarykey"`
	SwitchID uint `gorm:"column:switch_id;index;not null;comment:切换事件"`
	MemberID uint `gorm:"column:member_id;index;not null;comment:成员"`
	Position int  `gorm:"column:position;not null;comment:顺序"`
}

// TableName 指定表名
func (SwitchMember) TableName() string {
	return "switch_members"
}

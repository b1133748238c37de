// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"
	"time"

	"plural_proxy_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// SystemRepository 系统数据访问接口
type SystemRepository interface {
	// FindByID 按 id 查找系统
	FindByID(ctx context.Context, id uint) (*model.System, error)
	// FindByAccount 查找账号所属系统，未注册返回 (nil, nil)
	FindByAccount(ctx context.Context, uid int64) (*model.System, error)
	// Create 创建系统
	Create(ctx context.Context, system *model.System) error
	// Save 保存系统资料
	Save(ctx context.Context, system *model.System) error
	// HidExists 检查 hid 是否已被占用
	HidExists(ctx context.Context, hid string) (bool, error)
}

// AccountRepository 账号绑定数据访问接口
type AccountRepository interface {
	// FindByUID 查找账号绑定，不存在返回 (nil, nil)
	FindByUID(ctx context.Context, uid int64) (*model.Account, error)
	// Link 将账号绑定到系统
	Link(ctx context.Context, uid int64, systemID uint) error
	// Unlink 解除账号绑定
	Unlink(ctx context.Context, uid int64, systemID uint) error
	// ListBySystem 列出系统绑定的全部账号
	ListBySystem(ctx context.Context, systemID uint) ([]int64, error)
}

// MemberRepository 成员数据访问接口
type MemberRepository interface {
	// FindByHid 在系统内按 hid 查找成员
	FindByHid(ctx context.Context, systemID uint, hid string) (*model.Member, error)
	// FindBySystem 列出系统全部成员
	FindBySystem(ctx context.Context, systemID uint) ([]model.Member, error)
	// FindByIDs 按 id 批量查找系统内成员
	FindByIDs(ctx context.Context, systemID uint, ids []uint) ([]model.Member, error)
	// FindProxyMembersByAccount 查找账号可代理的全部成员（含系统信息）
	FindProxyMembersByAccount(ctx context.Context, uid int64) ([]model.ProxyMember, error)
	// Create 创建成员
	Create(ctx context.Context, member *model.Member) error
	// Save 保存成员资料
	Save(ctx context.Context, member *model.Member) error
	// Delete 删除成员
	Delete(ctx context.Context, id uint) error
	// HidExists 检查 hid 是否已被占用
	HidExists(ctx context.Context, hid string) (bool, error)
}

// WebhookRepository 频道中继端点数据访问接口
type WebhookRepository interface {
	// FindByChannel 查找频道绑定，不存在返回 (nil, nil)
	FindByChannel(ctx context.Context, channelID int64) (*model.Webhook, error)
	// Upsert 写入频道绑定，已存在时覆盖
	Upsert(ctx context.Context, hook *model.Webhook) error
	// DeleteByChannel 删除频道绑定
	DeleteByChannel(ctx context.Context, channelID int64) error
}

// MessageRepository 代理消息身份记录数据访问接口
type MessageRepository interface {
	// Create 写入身份记录
	Create(ctx context.Context, message *model.Message) error
	// FindInfo 按代理消息 id 查找，不存在返回 (nil, nil)
	FindInfo(ctx context.Context, mid int64) (*model.MessageInfo, error)
	// FindInfoBySender 按代理消息 id + 原发送账号查找，不存在返回 (nil, nil)
	FindInfoBySender(ctx context.Context, mid int64, sender int64) (*model.MessageInfo, error)
	// Delete 删除身份记录，返回是否确实删除了一行
	Delete(ctx context.Context, mid int64) (bool, error)
	// DeleteByMember 删除成员的全部身份记录
	DeleteByMember(ctx context.Context, memberID uint) error
}

// SwitchRepository 前台切换数据访问接口
type SwitchRepository interface {
	// Latest 按时间倒序返回最近 n 条切换（成员按 position 排序）
	Latest(ctx context.Context, systemID uint, n int) ([]model.Switch, error)
	// LatestForUpdate 同 Latest，并对返回的行加写锁，须在事务内调用
	LatestForUpdate(ctx context.Context, systemID uint, n int) ([]model.Switch, error)
	// Create 创建切换事件及其成员行
	Create(ctx context.Context, sw *model.Switch) error
	// UpdateTimestamp 修改切换时间
	UpdateTimestamp(ctx context.Context, id uint, at time.Time) error
	// DeleteMembershipsByMember 删除某成员的全部切换成员行
	DeleteMembershipsByMember(ctx context.Context, memberID uint) error
}

// ServerRepository 服务器配置数据访问接口
type ServerRepository interface {
	// Find 查找服务器配置，不存在返回 (nil, nil)
	Find(ctx context.Context, id int64) (*model.Server, error)
	// SetLogChannel 设置日志频道，0 表示清除
	SetLogChannel(ctx context.Context, id int64, channelID int64) error
}

// ==================== 聚合结构 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db      *gorm.DB
	System  SystemRepository
	Account AccountRepository
	Member  MemberRepository
	Webhook WebhookRepository
	Message MessageRepository
	Switch  SwitchRepository
	Server  ServerRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:      db,
		System:  NewSystemRepository(db),
		Account: NewAccountRepository(db),
		Member:  NewMemberRepository(db),
		Webhook: NewWebhookRepository(db),
		Message: NewMessageRepository(db),
		Switch:  NewSwitchRepository(db),
		Server:  NewServerRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

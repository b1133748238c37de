// Package service 定义业务层接口
// 本文件定义 HTTP 查询/命令接口所依赖的 Service 接口，供 Handler 层调用
package service

import (
	"context"
	"time"

	"plural_proxy_server/internal/model"
	"plural_proxy_server/internal/service/member"
	"plural_proxy_server/internal/service/message"
	"plural_proxy_server/internal/service/switches"
	"plural_proxy_server/internal/service/system"
)

// SystemService 系统业务接口
type SystemService interface {
	// Resolve 账号所属系统
	Resolve(ctx context.Context, uid int64) (*model.System, error)
	// Register 为账号注册新系统
	Register(ctx context.Context, uid int64, name string) (*model.System, error)
	// Update 修改系统资料
	Update(ctx context.Context, systemID uint, updates ...system.Update) (*model.System, error)
	// Accounts 系统绑定的账号
	Accounts(ctx context.Context, systemID uint) ([]int64, error)
	// LinkAccount 绑定账号
	LinkAccount(ctx context.Context, systemID uint, uid int64) error
	// UnlinkAccount 解绑账号
	UnlinkAccount(ctx context.Context, systemID uint, uid int64) error
}

// MemberService 成员业务接口
type MemberService interface {
	List(ctx context.Context, systemID uint) ([]model.Member, error)
	Get(ctx context.Context, systemID uint, hid string) (*model.Member, error)
	Create(ctx context.Context, systemID uint, name string) (*model.Member, error)
	Update(ctx context.Context, systemID uint, hid string, updates ...member.Update) (*model.Member, error)
	Delete(ctx context.Context, systemID uint, hid string) error
	// ProxyMembers 账号可代理的成员，供代理路由使用
	ProxyMembers(ctx context.Context, uid int64) ([]model.ProxyMember, error)
	InvalidateSystem(ctx context.Context, systemID uint)
	InvalidateAccount(uid int64)
}

// SwitchService 前台切换业务接口
type SwitchService interface {
	CurrentFronters(ctx context.Context, systemID uint) (*switches.Front, error)
	History(ctx context.Context, systemID uint, limit int) ([]switches.Entry, error)
	RegisterSwitch(ctx context.Context, systemID uint, memberIDs []uint) (*switches.Entry, error)
	MoveLastSwitch(ctx context.Context, systemID uint, to time.Time) (*switches.Entry, error)
}

// MessageService 代理消息查询接口
type MessageService interface {
	Info(ctx context.Context, mid int64) (*message.Info, error)
}

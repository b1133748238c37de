// Package system 实现系统注册、资料修改与账号绑定
package system

import (
	"context"
	"fmt"
	"strings"

	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/constants"
	"plural_proxy_server/pkg/errorx"
	"plural_proxy_server/pkg/util/random"

	"go.uber.org/zap"
)

// hidAttempts 生成不冲突 hid 的最大尝试次数
const hidAttempts = 10

// ProxyCacheInvalidator 代理成员缓存失效
type ProxyCacheInvalidator interface {
	InvalidateSystem(ctx context.Context, systemID uint)
	InvalidateAccount(uid int64)
}

// systemService 系统业务逻辑实现
type systemService struct {
	repos *repository.Repositories
	proxy ProxyCacheInvalidator
}

// NewSystemService 构造函数，proxy 为 nil 时不做缓存失效
func NewSystemService(repos *repository.Repositories, proxy ProxyCacheInvalidator) *systemService {
	return &systemService{
		repos: repos,
		proxy: proxy,
	}
}

// Resolve 账号所属系统，未注册返回 ErrNoRegisteredSystem
func (s *systemService) Resolve(ctx context.Context, uid int64) (*model.System, error) {
	system, err := s.repos.System.FindByAccount(ctx, uid)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, errorx.ErrNoRegisteredSystem
	}
	return system, nil
}

// Register 为账号注册新系统
func (s *systemService) Register(ctx context.Context, uid int64, name string) (*model.System, error) {
	system := &model.System{Name: strings.TrimSpace(name)}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.Account.FindByUID(ctx, uid)
		if err != nil {
			return err
		}
		if existing != nil {
			return errorx.ErrAlreadyRegisteredSystem
		}

		hid, err := newHid(ctx, tx)
		if err != nil {
			return err
		}
		system.Hid = hid

		if err := tx.System.Create(ctx, system); err != nil {
			return err
		}
		return tx.Account.Link(ctx, uid, system.ID)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("system registered", zap.Int64("uid", uid), zap.String("system_hid", system.Hid))
	s.invalidateAccount(uid)
	return system, nil
}

// Update 依次应用修改，任一修改校验失败则不落库
func (s *systemService) Update(ctx context.Context, systemID uint, updates ...Update) (*model.System, error) {
	system, err := s.repos.System.FindByID(ctx, systemID)
	if err != nil {
		return nil, err
	}

	oldTag := system.Tag
	for _, u := range updates {
		if err := u.apply(system); err != nil {
			return nil, err
		}
	}

	if system.Tag != oldTag && system.Tag != "" {
		if err := s.checkTagLength(ctx, systemID, system.Tag); err != nil {
			return nil, err
		}
	}

	if err := s.repos.System.Save(ctx, system); err != nil {
		return nil, err
	}
	if s.proxy != nil {
		s.proxy.InvalidateSystem(ctx, systemID)
	}
	return system, nil
}

// Accounts 系统绑定的全部账号
func (s *systemService) Accounts(ctx context.Context, systemID uint) ([]int64, error) {
	uids, err := s.repos.Account.ListBySystem(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if uids == nil {
		uids = []int64{}
	}
	return uids, nil
}

// LinkAccount 绑定另一个账号，该账号不能已属于任何系统
func (s *systemService) LinkAccount(ctx context.Context, systemID uint, uid int64) error {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.Account.FindByUID(ctx, uid)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.SystemID == systemID {
				return errorx.New(errorx.CodeAccountAlreadyLinked, "That account is already linked to your system.")
			}
			return errorx.New(errorx.CodeAccountAlreadyLinked, "That account already has a system registered.")
		}
		return tx.Account.Link(ctx, uid, systemID)
	})
	if err != nil {
		return err
	}

	zap.L().Info("account linked", zap.Int64("uid", uid), zap.Uint("system_id", systemID))
	s.invalidateAccount(uid)
	return nil
}

// UnlinkAccount 解绑账号，系统至少保留一个账号
func (s *systemService) UnlinkAccount(ctx context.Context, systemID uint, uid int64) error {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		uids, err := tx.Account.ListBySystem(ctx, systemID)
		if err != nil {
			return err
		}
		linked := false
		for _, id := range uids {
			if id == uid {
				linked = true
				break
			}
		}
		if !linked {
			return errorx.New(errorx.CodeNotFound, "That account isn't linked to your system.")
		}
		if len(uids) == 1 {
			return errorx.ErrCannotUnlinkOnlyAccount
		}
		return tx.Account.Unlink(ctx, uid, systemID)
	})
	if err != nil {
		return err
	}

	zap.L().Info("account unlinked", zap.Int64("uid", uid), zap.Uint("system_id", systemID))
	s.invalidateAccount(uid)
	return nil
}

// checkTagLength 新标签下每个成员的显示名都不能超过 webhook 名称上限
func (s *systemService) checkTagLength(ctx context.Context, systemID uint, tag string) error {
	members, err := s.repos.Member.FindBySystem(ctx, systemID)
	if err != nil {
		return err
	}
	var tooLong []string
	for _, m := range members {
		if model.DisplayNameLen(m.Name, tag) > constants.MAX_WEBHOOK_NAME_LEN {
			tooLong = append(tooLong, m.Name)
		}
	}
	if len(tooLong) == 0 {
		return nil
	}
	return errorx.New(errorx.CodeTagTooLong, fmt.Sprintf(
		"The maximum length of a name plus the system tag is %d characters. The following members would exceed the limit: %s.",
		constants.MAX_WEBHOOK_NAME_LEN, strings.Join(tooLong, ", ")))
}

func (s *systemService) invalidateAccount(uid int64) {
	if s.proxy != nil {
		s.proxy.InvalidateAccount(uid)
	}
}

// newHid 生成未被占用的系统 hid
func newHid(ctx context.Context, repos *repository.Repositories) (string, error) {
	for i := 0; i < hidAttempts; i++ {
		hid := random.GenerateHid()
		exists, err := repos.System.HidExists(ctx, hid)
		if err != nil {
			return "", err
		}
		if !exists {
			return hid, nil
		}
	}
	return "", errorx.ErrServerBusy
}

// Package member 实现成员的增删改查与代理匹配成员的缓存
package member

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"plural_proxy_server/internal/dao/mysql/repository"
	myredis "plural_proxy_server/internal/dao/redis"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/constants"
	"plural_proxy_server/pkg/errorx"
	"plural_proxy_server/pkg/util/random"

	"go.uber.org/zap"
)

// hidAttempts 生成不冲突 hid 的最大尝试次数
const hidAttempts = 10

// memberService 成员业务逻辑实现
// generations 记录每个账号缓存被清除的次数，回填前比对，避免旧数据覆盖清除结果
type memberService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService

	mu          sync.Mutex
	generations map[int64]uint64
}

// NewMemberService 构造函数，cache 为 nil 时不使用缓存
func NewMemberService(repos *repository.Repositories, cacheService myredis.AsyncCacheService) *memberService {
	return &memberService{
		repos:       repos,
		cache:       cacheService,
		generations: make(map[int64]uint64),
	}
}

// List 列出系统全部成员
func (s *memberService) List(ctx context.Context, systemID uint) ([]model.Member, error) {
	members, err := s.repos.Member.FindBySystem(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []model.Member{}
	}
	return members, nil
}

// Get 按 hid 查找系统内成员
func (s *memberService) Get(ctx context.Context, systemID uint, hid string) (*model.Member, error) {
	member, err := s.repos.Member.FindByHid(ctx, systemID, strings.ToLower(hid))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeMemberNotFound, "Member '%s' not found.", hid)
		}
		return nil, err
	}
	return member, nil
}

// Create 创建成员
func (s *memberService) Create(ctx context.Context, systemID uint, name string) (*model.Member, error) {
	member := &model.Member{SystemID: systemID}
	if err := (SetName{Name: name}).apply(member); err != nil {
		return nil, err
	}

	hid, err := s.newHid(ctx)
	if err != nil {
		return nil, err
	}
	member.Hid = hid

	if err := s.repos.Member.Create(ctx, member); err != nil {
		return nil, err
	}

	zap.L().Info("member created", zap.Uint("system_id", systemID), zap.String("member_hid", hid))
	return member, nil
}

// Update 依次应用修改，任一修改校验失败则不落库
func (s *memberService) Update(ctx context.Context, systemID uint, hid string, updates ...Update) (*model.Member, error) {
	member, err := s.Get(ctx, systemID, hid)
	if err != nil {
		return nil, err
	}

	refresh := false
	renamed := false
	for _, u := range updates {
		if err := u.apply(member); err != nil {
			return nil, err
		}
		refresh = refresh || u.affectsProxy()
		if _, ok := u.(SetName); ok {
			renamed = true
		}
	}

	if renamed {
		system, err := s.repos.System.FindByID(ctx, systemID)
		if err != nil {
			return nil, err
		}
		if model.DisplayNameLen(member.Name, system.Tag) > constants.MAX_WEBHOOK_NAME_LEN {
			return nil, errorx.Newf(errorx.CodeTagTooLong,
				"The name '%s' plus the system tag '%s' is longer than %d characters.",
				member.Name, system.Tag, constants.MAX_WEBHOOK_NAME_LEN)
		}
	}

	if err := s.repos.Member.Save(ctx, member); err != nil {
		return nil, err
	}
	if refresh {
		s.InvalidateSystem(ctx, systemID)
	}
	return member, nil
}

// Delete 删除成员，并在同一事务内清理其前台记录与代理消息记录
func (s *memberService) Delete(ctx context.Context, systemID uint, hid string) error {
	member, err := s.Get(ctx, systemID, hid)
	if err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Switch.DeleteMembershipsByMember(ctx, member.ID); err != nil {
			return err
		}
		if err := tx.Message.DeleteByMember(ctx, member.ID); err != nil {
			return err
		}
		return tx.Member.Delete(ctx, member.ID)
	})
	if err != nil {
		return err
	}

	zap.L().Info("member deleted", zap.Uint("system_id", systemID), zap.String("member_hid", member.Hid))
	s.InvalidateSystem(ctx, systemID)
	return nil
}

// ProxyMembers 账号可代理的成员，优先读缓存
func (s *memberService) ProxyMembers(ctx context.Context, uid int64) ([]model.ProxyMember, error) {
	key := proxyMembersKey(uid)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil && cached != "" {
			var members []model.ProxyMember
			if err := json.Unmarshal([]byte(cached), &members); err == nil {
				return members, nil
			}
			zap.L().Error("Unmarshal proxy members cache error", zap.Error(err), zap.Int64("uid", uid))
		} else if err != nil {
			zap.L().Error("Redis get error", zap.Error(err))
		}
	}

	gen := s.generation(uid)
	members, err := s.repos.Member.FindProxyMembersByAccount(ctx, uid)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []model.ProxyMember{}
	}

	if s.cache != nil {
		data, err := json.Marshal(members)
		if err != nil {
			zap.L().Error("Marshal proxy members error", zap.Error(err))
			return members, nil
		}
		s.cache.SubmitTask(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			// 读库之后发生过清除，丢弃本次回填
			if s.generations[uid] != gen {
				return
			}
			if err := s.cache.Set(context.Background(), key, string(data), time.Minute*constants.REDIS_TIMEOUT); err != nil {
				zap.L().Error(err.Error())
			}
		})
	}
	return members, nil
}

// InvalidateSystem 清除系统下所有账号的代理成员缓存
func (s *memberService) InvalidateSystem(ctx context.Context, systemID uint) {
	if s.cache == nil {
		return
	}
	uids, err := s.repos.Account.ListBySystem(ctx, systemID)
	if err != nil {
		zap.L().Error("List accounts for cache invalidation error", zap.Error(err), zap.Uint("system_id", systemID))
		return
	}
	for _, uid := range uids {
		s.InvalidateAccount(uid)
	}
}

// InvalidateAccount 同步清除单个账号的代理成员缓存
// 与回填共用同一把锁，保证清除之后不会被更早读出的数据写回
func (s *memberService) InvalidateAccount(uid int64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[uid]++
	if err := s.cache.Delete(context.Background(), proxyMembersKey(uid)); err != nil {
		zap.L().Error("Redis delete proxy members error", zap.Error(err), zap.Int64("uid", uid))
	}
}

func (s *memberService) generation(uid int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[uid]
}

// newHid 生成未被占用的成员 hid
func (s *memberService) newHid(ctx context.Context) (string, error) {
	for i := 0; i < hidAttempts; i++ {
		hid := random.GenerateHid()
		exists, err := s.repos.Member.HidExists(ctx, hid)
		if err != nil {
			return "", err
		}
		if !exists {
			return hid, nil
		}
	}
	return "", errorx.ErrServerBusy
}

func proxyMembersKey(uid int64) string {
	return constants.ProxyMembersCacheKeyPrefix + strconv.FormatInt(uid, 10)
}

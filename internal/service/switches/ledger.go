// Package switches 维护系统的前台切换日志
package switches

import (
	"context"
	"time"

	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/constants"
	"plural_proxy_server/pkg/errorx"

	"go.uber.org/zap"
)

// Front 当前前台
// Since 为 nil 表示没有切换记录或最近一次切换无人
type Front struct {
	Members []model.Member
	Since   *time.Time
}

// Entry 历史中的一次切换
type Entry struct {
	ID        uint
	Timestamp time.Time
	Members   []model.Member
}

// Ledger 切换日志服务
type Ledger struct {
	repos *repository.Repositories
	now   func() time.Time
}

// NewLedger 创建切换日志服务
func NewLedger(repos *repository.Repositories) *Ledger {
	return &Ledger{repos: repos, now: time.Now}
}

// WithClock 替换时钟
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// CurrentFronters 最近一次切换的成员（保持提交顺序）与时间
func (l *Ledger) CurrentFronters(ctx context.Context, systemID uint) (*Front, error) {
	latest, err := l.repos.Switch.Latest(ctx, systemID, 1)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 || len(latest[0].Members) == 0 {
		return &Front{Members: []model.Member{}}, nil
	}

	entries, err := l.resolve(ctx, l.repos, systemID, latest)
	if err != nil {
		return nil, err
	}
	since := entries[0].Timestamp
	return &Front{Members: entries[0].Members, Since: &since}, nil
}

// History 最近 limit 次切换，新的在前
// limit 不大于 0 时取默认条数，超过上限时截断
func (l *Ledger) History(ctx context.Context, systemID uint, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = constants.DEFAULT_HISTORY_LIMIT
	}
	if limit > constants.MAX_HISTORY_LIMIT {
		limit = constants.MAX_HISTORY_LIMIT
	}
	switches, err := l.repos.Switch.Latest(ctx, systemID, limit)
	if err != nil {
		return nil, err
	}
	return l.resolve(ctx, l.repos, systemID, switches)
}

// RegisterSwitch 记录一次切换
// memberIDs 的顺序即前台顺序；空列表表示无人在前台
func (l *Ledger) RegisterSwitch(ctx context.Context, systemID uint, memberIDs []uint) (*Entry, error) {
	seen := make(map[uint]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			return nil, errorx.ErrDuplicateSwitchMembers
		}
		seen[id] = struct{}{}
	}

	var entry *Entry
	err := l.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		members, err := l.loadMembers(ctx, tx, systemID, memberIDs)
		if err != nil {
			return err
		}

		latest, err := tx.Switch.LatestForUpdate(ctx, systemID, 1)
		if err != nil {
			return err
		}
		var current []uint
		if len(latest) > 0 {
			current = latest[0].MemberIDs()
		}
		if equalIDs(current, memberIDs) {
			names := make([]string, 0, len(memberIDs))
			for _, id := range memberIDs {
				names = append(names, members[id].Name)
			}
			return membersAlreadyFronting(names)
		}

		sw := &model.Switch{SystemID: systemID, SwitchedAt: l.now().UTC()}
		for i, id := range memberIDs {
			sw.Members = append(sw.Members, model.SwitchMember{MemberID: id, Position: i})
		}
		if err = tx.Switch.Create(ctx, sw); err != nil {
			return err
		}

		entry = &Entry{ID: sw.ID, Timestamp: sw.SwitchedAt, Members: make([]model.Member, 0, len(memberIDs))}
		for _, id := range memberIDs {
			entry.Members = append(entry.Members, members[id])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("switch registered",
		zap.Uint("system_id", systemID), zap.Uint("switch_id", entry.ID), zap.Int("members", len(memberIDs)))
	return entry, nil
}

// MoveLastSwitch 修改最近一次切换的时间
// 不得晚于当前时间，也不得早于倒数第二次切换；校验与修改在同一事务内完成
func (l *Ledger) MoveLastSwitch(ctx context.Context, systemID uint, to time.Time) (*Entry, error) {
	now := l.now()
	to = to.UTC()
	if to.After(now) {
		return nil, errorx.ErrCannotMoveSwitchToFuture
	}

	var moved *Entry
	err := l.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		lastTwo, err := tx.Switch.LatestForUpdate(ctx, systemID, 2)
		if err != nil {
			return err
		}
		if len(lastTwo) == 0 {
			return errorx.ErrNoSwitches
		}
		if len(lastTwo) > 1 && to.Before(lastTwo[1].SwitchedAt) {
			return newBeforeLastSwitchError(lastTwo[1].SwitchedAt, now)
		}

		if err = tx.Switch.UpdateTimestamp(ctx, lastTwo[0].ID, to); err != nil {
			return err
		}
		lastTwo[0].SwitchedAt = to

		entries, err := l.resolve(ctx, tx, systemID, lastTwo[:1])
		if err != nil {
			return err
		}
		moved = &entries[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("switch moved",
		zap.Uint("system_id", systemID), zap.Uint("switch_id", moved.ID), zap.Time("to", to))
	return moved, nil
}

// loadMembers 校验成员均属于该系统
func (l *Ledger) loadMembers(ctx context.Context, repos *repository.Repositories, systemID uint, ids []uint) (map[uint]model.Member, error) {
	found, err := repos.Member.FindByIDs(ctx, systemID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Member, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, errorx.Newf(errorx.CodeMemberNotFound, "Member with id %d not found in this system.", id)
		}
	}
	return byID, nil
}

// resolve 将切换记录中的成员 id 展开为成员，保持 position 顺序
func (l *Ledger) resolve(ctx context.Context, repos *repository.Repositories, systemID uint, switches []model.Switch) ([]Entry, error) {
	var ids []uint
	seen := make(map[uint]struct{})
	for _, sw := range switches {
		for _, id := range sw.MemberIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	found, err := repos.Member.FindByIDs(ctx, systemID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Member, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	entries := make([]Entry, 0, len(switches))
	for _, sw := range switches {
		entry := Entry{ID: sw.ID, Timestamp: sw.SwitchedAt.UTC(), Members: make([]model.Member, 0, len(sw.Members))}
		for _, id := range sw.MemberIDs() {
			if m, ok := byID[id]; ok {
				entry.Members = append(entry.Members, m)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package switches

import (
	"context"
	"errors"
	"testing"
	"time"

	"plural_proxy_server/internal/dao/mysql/dbtest"
	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	repos  *repository.Repositories
	ledger *Ledger
	sys    *model.System
	now    time.Time
	a, b   *model.Member
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	repos := dbtest.Repos(t)

	sys := &model.System{Hid: "sysaa", Name: "Test System"}
	require.NoError(t, repos.System.Create(ctx, sys))
	a := &model.Member{Hid: "memaa", SystemID: sys.ID, Name: "Alice"}
	b := &model.Member{Hid: "membb", SystemID: sys.ID, Name: "Bob"}
	require.NoError(t, repos.Member.Create(ctx, a))
	require.NoError(t, repos.Member.Create(ctx, b))

	f := &ledgerFixture{
		repos: repos,
		sys:   sys,
		now:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		a:     a,
		b:     b,
	}
	f.ledger = NewLedger(repos).WithClock(func() time.Time { return f.now })
	return f
}

// advance 推进时钟
func (f *ledgerFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func names(members []model.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Name)
	}
	return out
}

func TestCurrentFrontersEmpty(t *testing.T) {
	f := newLedgerFixture(t)

	front, err := f.ledger.CurrentFronters(context.Background(), f.sys.ID)
	require.NoError(t, err)
	assert.Empty(t, front.Members)
	assert.Nil(t, front.Since)
}

func TestRegisterSwitchKeepsOrder(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID, f.b.ID})
	require.NoError(t, err)

	f.advance(time.Minute)
	// 同一组成员换顺序也是一次新的切换
	entry, err := f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.b.ID, f.a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Alice"}, names(entry.Members))

	front, err := f.ledger.CurrentFronters(ctx, f.sys.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Alice"}, names(front.Members))
	require.NotNil(t, front.Since)
	assert.True(t, front.Since.Equal(f.now))
}

func TestRegisterSwitchAlreadyFronting(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID})
	require.NoError(t, err)

	_, err = f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeMembersAlreadyFronting, errorx.GetCode(err))
	assert.Equal(t, "Alice is already fronting.", err.Error())

	_, err = f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID, f.b.ID})
	require.NoError(t, err)
	_, err = f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID, f.b.ID})
	require.Error(t, err)
	assert.Equal(t, "Members Alice, Bob are already fronting.", err.Error())

	history, err := f.ledger.History(ctx, f.sys.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRegisterSwitchOut(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	// 没有任何切换时，空列表等于当前状态
	_, err := f.ledger.RegisterSwitch(ctx, f.sys.ID, nil)
	assert.Equal(t, errorx.CodeMembersAlreadyFronting, errorx.GetCode(err))

	_, err = f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID})
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{})
	require.NoError(t, err)

	front, err := f.ledger.CurrentFronters(ctx, f.sys.ID)
	require.NoError(t, err)
	assert.Empty(t, front.Members)
	assert.Nil(t, front.Since)
}

func TestRegisterSwitchRejectsBadMembers(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID, f.a.ID})
	assert.ErrorIs(t, err, errorx.ErrDuplicateSwitchMembers)

	other := &model.System{Hid: "sysbb", Name: "Other"}
	require.NoError(t, f.repos.System.Create(ctx, other))
	stranger := &model.Member{Hid: "memcc", SystemID: other.ID, Name: "Carol"}
	require.NoError(t, f.repos.Member.Create(ctx, stranger))

	_, err = f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID, stranger.ID})
	assert.Equal(t, errorx.CodeMemberNotFound, errorx.GetCode(err))

	history, err := f.ledger.History(ctx, f.sys.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMoveLastSwitch(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.MoveLastSwitch(ctx, f.sys.ID, f.now.Add(-time.Minute))
	assert.ErrorIs(t, err, errorx.ErrNoSwitches)

	first := f.now
	_, err = f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID})
	require.NoError(t, err)
	f.advance(2 * time.Hour)
	_, err = f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.b.ID})
	require.NoError(t, err)
	f.advance(time.Hour)

	_, err = f.ledger.MoveLastSwitch(ctx, f.sys.ID, f.now.Add(time.Minute))
	assert.ErrorIs(t, err, errorx.ErrCannotMoveSwitchToFuture)

	_, err = f.ledger.MoveLastSwitch(ctx, f.sys.ID, first.Add(-time.Minute))
	var before *BeforeLastSwitchError
	require.True(t, errors.As(err, &before))
	assert.True(t, before.SecondLast.Equal(first))
	assert.Equal(t, errorx.CodeCannotMoveSwitchBeforeLast, errorx.GetCode(err))
	assert.Equal(t, "Can't move switch to before last switch time (3h 0m ago).", err.Error())

	target := first.Add(30 * time.Minute)
	moved, err := f.ledger.MoveLastSwitch(ctx, f.sys.ID, target)
	require.NoError(t, err)
	assert.True(t, moved.Timestamp.Equal(target))
	assert.Equal(t, []string{"Bob"}, names(moved.Members))

	front, err := f.ledger.CurrentFronters(ctx, f.sys.ID)
	require.NoError(t, err)
	require.NotNil(t, front.Since)
	assert.True(t, front.Since.Equal(target))

	history, err := f.ledger.History(ctx, f.sys.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, []string{"Bob"}, names(history[0].Members))
	assert.Equal(t, []string{"Alice"}, names(history[1].Members))
}

func TestMoveOnlySwitch(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{f.a.ID})
	require.NoError(t, err)

	// 只有一次切换时没有下限
	target := f.now.Add(-72 * time.Hour)
	moved, err := f.ledger.MoveLastSwitch(ctx, f.sys.ID, target)
	require.NoError(t, err)
	assert.True(t, moved.Timestamp.Equal(target))
}

func TestHistoryLimit(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		id := f.a.ID
		if i%2 == 1 {
			id = f.b.ID
		}
		_, err := f.ledger.RegisterSwitch(ctx, f.sys.ID, []uint{id})
		require.NoError(t, err)
		f.advance(time.Minute)
	}

	history, err := f.ledger.History(ctx, f.sys.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Timestamp.After(history[1].Timestamp))

	// 0 取默认条数
	history, err = f.ledger.History(ctx, f.sys.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

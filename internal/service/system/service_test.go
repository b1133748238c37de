package system

import (
	"context"
	"testing"

	"plural_proxy_server/internal/dao/mysql/dbtest"
	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingInvalidator 记录缓存失效调用
type recordingInvalidator struct {
	systems  []uint
	accounts []int64
}

func (r *recordingInvalidator) InvalidateSystem(ctx context.Context, systemID uint) {
	r.systems = append(r.systems, systemID)
}

func (r *recordingInvalidator) InvalidateAccount(uid int64) {
	r.accounts = append(r.accounts, uid)
}

func newService(t *testing.T) (*systemService, *repository.Repositories, *recordingInvalidator) {
	t.Helper()
	repos := dbtest.Repos(t)
	inv := &recordingInvalidator{}
	return NewSystemService(repos, inv), repos, inv
}

func TestRegister(t *testing.T) {
	svc, _, inv := newService(t)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, 1)
	assert.ErrorIs(t, err, errorx.ErrNoRegisteredSystem)

	sys, err := svc.Register(ctx, 1, " Crew ")
	require.NoError(t, err)
	assert.Equal(t, "Crew", sys.Name)
	assert.Len(t, sys.Hid, 5)
	assert.Equal(t, []int64{1}, inv.accounts)

	got, err := svc.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sys.ID, got.ID)

	_, err = svc.Register(ctx, 1, "Again")
	assert.ErrorIs(t, err, errorx.ErrAlreadyRegisteredSystem)
}

func TestUpdateTagLength(t *testing.T) {
	svc, repos, inv := newService(t)
	ctx := context.Background()
	sys, err := svc.Register(ctx, 1, "Crew")
	require.NoError(t, err)

	long := &model.Member{Hid: "memaa", SystemID: sys.ID, Name: "abcdefghijklmnopqrstuvwxyz"}
	short := &model.Member{Hid: "membb", SystemID: sys.ID, Name: "Bo"}
	require.NoError(t, repos.Member.Create(ctx, long))
	require.NoError(t, repos.Member.Create(ctx, short))

	// 26 + 1 + 5 = 32
	updated, err := svc.Update(ctx, sys.ID, SetTag{Tag: "| abc"})
	require.NoError(t, err)
	assert.Equal(t, "| abc", updated.Tag)
	assert.Equal(t, []uint{sys.ID}, inv.systems)

	_, err = svc.Update(ctx, sys.ID, SetTag{Tag: "| abcd"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeTagTooLong, errorx.GetCode(err))
	assert.Contains(t, err.Error(), "abcdefghijklmnopqrstuvwxyz")
	assert.NotContains(t, err.Error(), "Bo.")

	stored, err := repos.System.FindByID(ctx, sys.ID)
	require.NoError(t, err)
	assert.Equal(t, "| abc", stored.Tag)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sys, err := svc.Register(ctx, 1, "Crew")
	require.NoError(t, err)

	_, err = svc.Update(ctx, sys.ID, SetName{Name: "New"}, SetAvatar{URL: "javascript:alert(1)"})
	assert.ErrorIs(t, err, errorx.ErrInvalidAvatarURL)

	updated, err := svc.Update(ctx, sys.ID,
		SetName{Name: "New"},
		SetDescription{Description: "desc"},
		SetAvatar{URL: "https://example.com/s.png"},
	)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, "https://example.com/s.png", updated.AvatarURL)
}

func TestLinkUnlinkAccounts(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sys, err := svc.Register(ctx, 1, "Crew")
	require.NoError(t, err)
	other, err := svc.Register(ctx, 9, "Other")
	require.NoError(t, err)

	err = svc.UnlinkAccount(ctx, sys.ID, 1)
	assert.ErrorIs(t, err, errorx.ErrCannotUnlinkOnlyAccount)

	require.NoError(t, svc.LinkAccount(ctx, sys.ID, 2))
	err = svc.LinkAccount(ctx, sys.ID, 2)
	assert.Equal(t, errorx.CodeAccountAlreadyLinked, errorx.GetCode(err))
	err = svc.LinkAccount(ctx, sys.ID, 9)
	assert.Equal(t, errorx.CodeAccountAlreadyLinked, errorx.GetCode(err))

	uids, err := svc.Accounts(ctx, sys.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, uids)

	err = svc.UnlinkAccount(ctx, sys.ID, 9)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	require.NoError(t, svc.UnlinkAccount(ctx, sys.ID, 1))
	_, err = svc.Resolve(ctx, 1)
	assert.ErrorIs(t, err, errorx.ErrNoRegisteredSystem)

	got, err := svc.Resolve(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ID)
}

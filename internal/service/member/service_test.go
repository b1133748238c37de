package member

import (
	"context"
	"strconv"
	"testing"
	"time"

	"plural_proxy_server/internal/dao/mysql/dbtest"
	"plural_proxy_server/internal/dao/mysql/repository"
	"plural_proxy_server/internal/dao/redis/cachetest"
	"plural_proxy_server/internal/model"
	"plural_proxy_server/pkg/constants"
	"plural_proxy_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUID = int64(42)

type fixture struct {
	repos *repository.Repositories
	cache *cachetest.Cache
	svc   *memberService
	sys   *model.System
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := dbtest.Repos(t)
	sys := &model.System{Hid: "sysaa", Name: "The System", Tag: "| sys"}
	require.NoError(t, repos.System.Create(context.Background(), sys))
	require.NoError(t, repos.Account.Link(context.Background(), testUID, sys.ID))

	cache := cachetest.New()
	return &fixture{
		repos: repos,
		cache: cache,
		svc:   NewMemberService(repos, cache),
		sys:   sys,
	}
}

func cacheKey(uid int64) string {
	return constants.ProxyMembersCacheKeyPrefix + strconv.FormatInt(uid, 10)
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, f.sys.ID, "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", m.Name)
	assert.Len(t, m.Hid, 5)

	got, err := f.svc.Get(ctx, f.sys.ID, m.Hid)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = f.svc.Get(ctx, f.sys.ID, "zzzzz")
	assert.Equal(t, errorx.CodeMemberNotFound, errorx.GetCode(err))

	_, err = f.svc.Create(ctx, f.sys.ID, " ")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	list, err := f.svc.List(ctx, f.sys.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateAppliesAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.Create(ctx, f.sys.ID, "Alice")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.sys.ID, m.Hid,
		SetProxyTags{Prefix: "a:"},
		SetAvatar{URL: "ftp://nope"},
	)
	assert.ErrorIs(t, err, errorx.ErrInvalidAvatarURL)

	stored, err := f.svc.Get(ctx, f.sys.ID, m.Hid)
	require.NoError(t, err)
	assert.Empty(t, stored.Prefix)

	updated, err := f.svc.Update(ctx, f.sys.ID, m.Hid,
		SetProxyTags{Prefix: "a:"},
		SetColor{Color: "#AABBCC"},
		SetPronouns{Pronouns: "she/her"},
		SetDescription{Description: "hi"},
		SetAvatar{URL: "https://example.com/a.png"},
	)
	require.NoError(t, err)
	assert.Equal(t, "a:", updated.Prefix)
	assert.Equal(t, "aabbcc", updated.Color)

	stored, err = f.svc.Get(ctx, f.sys.ID, m.Hid)
	require.NoError(t, err)
	assert.Equal(t, "she/her", stored.Pronouns)
	assert.Equal(t, "https://example.com/a.png", stored.AvatarURL)
	assert.True(t, stored.Proxyable())
}

func TestRenameChecksTagLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.Create(ctx, f.sys.ID, "Alice")
	require.NoError(t, err)

	// "| sys" 占 5 个字符，加一个空格后名字最多 26 个字符
	_, err = f.svc.Update(ctx, f.sys.ID, m.Hid, SetName{Name: "abcdefghijklmnopqrstuvwxyz"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.sys.ID, m.Hid, SetName{Name: "abcdefghijklmnopqrstuvwxyz1"})
	assert.Equal(t, errorx.CodeTagTooLong, errorx.GetCode(err))
}

func TestProxyMembersCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.Create(ctx, f.sys.ID, "Alice")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, f.sys.ID, m.Hid, SetProxyTags{Prefix: "a:"})
	require.NoError(t, err)

	members, err := f.svc.ProxyMembers(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Alice | sys", members[0].FullName())
	assert.True(t, f.cache.Has(cacheKey(testUID)))

	// 改名会清掉缓存，下一次读到新名字
	_, err = f.svc.Update(ctx, f.sys.ID, m.Hid, SetName{Name: "Alicia"})
	require.NoError(t, err)
	assert.False(t, f.cache.Has(cacheKey(testUID)))

	members, err = f.svc.ProxyMembers(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Alicia", members[0].Name)

	// 仅改描述不影响缓存
	_, err = f.svc.Update(ctx, f.sys.ID, m.Hid, SetDescription{Description: "x"})
	require.NoError(t, err)
	assert.True(t, f.cache.Has(cacheKey(testUID)))

	none, err := f.svc.ProxyMembers(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStaleRefillDroppedAfterInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.Create(ctx, f.sys.ID, "Alice")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, f.sys.ID, m.Hid, SetProxyTags{Prefix: "a:"})
	require.NoError(t, err)

	// 回填任务排队期间改了标签
	f.cache.HoldTasks()
	members, err := f.svc.ProxyMembers(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "a:", members[0].Prefix)

	_, err = f.svc.Update(ctx, f.sys.ID, m.Hid, SetProxyTags{Prefix: "b:"})
	require.NoError(t, err)
	f.cache.RunHeldTasks()
	assert.False(t, f.cache.Has(cacheKey(testUID)))

	members, err = f.svc.ProxyMembers(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "b:", members[0].Prefix)
	assert.True(t, f.cache.Has(cacheKey(testUID)))
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.svc.Create(ctx, f.sys.ID, "Alice")
	require.NoError(t, err)
	bob, err := f.svc.Create(ctx, f.sys.ID, "Bob")
	require.NoError(t, err)

	sw := &model.Switch{SystemID: f.sys.ID, SwitchedAt: time.Now().UTC(), Members: []model.SwitchMember{
		{MemberID: alice.ID, Position: 0},
		{MemberID: bob.ID, Position: 1},
	}}
	require.NoError(t, f.repos.Switch.Create(ctx, sw))
	require.NoError(t, f.repos.Message.Create(ctx, &model.Message{MID: 900, ChannelID: 1, MemberID: alice.ID, Sender: testUID}))

	require.NoError(t, f.svc.Delete(ctx, f.sys.ID, alice.Hid))

	_, err = f.svc.Get(ctx, f.sys.ID, alice.Hid)
	assert.Equal(t, errorx.CodeMemberNotFound, errorx.GetCode(err))

	info, err := f.repos.Message.FindInfo(ctx, 900)
	require.NoError(t, err)
	assert.Nil(t, info)

	latest, err := f.repos.Switch.Latest(ctx, f.sys.ID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, []uint{bob.ID}, latest[0].MemberIDs())

	err = f.svc.Delete(ctx, f.sys.ID, alice.Hid)
	assert.Equal(t, errorx.CodeMemberNotFound, errorx.GetCode(err))
}

package proxy

import (
	"context"
	"sync"
	"testing"

	"plural_proxy_server/internal/infrastructure/platform"
	"plural_proxy_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsStableAcrossCalls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.registry.GetOrCreate(ctx, 10)
	require.NoError(t, err)
	second, err := f.registry.GetOrCreate(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, first.WebhookID, second.WebhookID)
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, 1, f.client.createCalls)

	stored, err := f.repos.Webhook.FindByChannel(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first.WebhookID, stored.WebhookID)
}

func TestGetOrCreateUsesDatabaseWhenCacheIsCold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.registry.GetOrCreate(ctx, 10)
	require.NoError(t, err)
	f.cache.Clear()

	again, err := f.registry.GetOrCreate(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, first.WebhookID, again.WebhookID)
	assert.Equal(t, 1, f.client.listCalls)
}

func TestGetOrCreateAdoptsExistingHook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.hooks[10] = []platform.Webhook{
		{ID: 1, Token: "foreign", Name: testHookName, UserID: 77},
		{ID: 2, Token: "other-name", Name: "Something else", UserID: testBotID},
		{ID: 3, Token: "ours", Name: testHookName, UserID: testBotID},
	}

	hook, err := f.registry.GetOrCreate(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), hook.WebhookID)
	assert.Equal(t, "ours", hook.Token)
	assert.Equal(t, 0, f.client.createCalls)

	stored, err := f.repos.Webhook.FindByChannel(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(3), stored.WebhookID)
}

func TestGetOrCreateForbidden(t *testing.T) {
	f := newFixture(t)
	f.client.createErr = platform.ErrForbidden

	_, err := f.registry.GetOrCreate(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, errorx.ErrNoRelayPermission)
	assert.ErrorIs(t, err, platform.ErrForbidden)
}

func TestGetOrCreateConcurrentFirstRelay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hook, err := f.registry.GetOrCreate(ctx, 10)
			errs[i] = err
			if err == nil {
				ids[i] = hook.WebhookID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, f.client.createCalls)
}

func TestForgetDropsBinding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.registry.GetOrCreate(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, f.registry.Forget(ctx, 10))

	stored, err := f.repos.Webhook.FindByChannel(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Zero(t, f.cache.Len())
}

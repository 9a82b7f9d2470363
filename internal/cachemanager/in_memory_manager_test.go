package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type viewKey string

type view struct {
	IDs   []int
	Total int
}

func newViews() *InMemoryCacheManager[viewKey, view] {
	return NewInMemoryCacheManager[viewKey, view]("views", DefaultExpiration, DefaultCleanupInterval)
}

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	cache := newViews()
	v := view{IDs: []int{3, 1}, Total: 2}
	cache.Set(context.Background(), "q:tucows", v, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "q:tucows")
	require.True(t, ok)
	require.Equal(t, v, got)
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	got, ok := newViews().Get(context.Background(), "q:none")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestInMemoryCacheManager_WrongStoredType(t *testing.T) {
	cache := newViews()
	cache.cache.Set("q:bad", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "q:bad")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := newViews()
	cache.Set(context.Background(), "q:short", view{Total: 1}, time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "q:short")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := newViews()
	cache.Set(context.Background(), "q", view{Total: 4}, 50*time.Millisecond)

	got, ok := cache.GetWithRefresh(context.Background(), "q", time.Hour)
	require.True(t, ok)
	require.Equal(t, 4, got.Total)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get(context.Background(), "q")
	require.True(t, ok)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := newViews()
	cache.Set(ctx, "a", view{}, DefaultExpiration)
	cache.Set(ctx, "b", view{}, DefaultExpiration)
	cache.Set(ctx, "c", view{}, DefaultExpiration)

	require.NoError(t, cache.Delete(ctx, "a", "b"))
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	require.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Flush(ctx))
	require.Zero(t, cache.Len())
}

package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

type renderedFile struct {
	Name   string
	Source string
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, renderedFile]("render-cache", DefaultExpiration, DefaultCleanupInterval)
	rendered := renderedFile{
		Name:   "Button.jsx",
		Source: "export function Button() {}",
	}
	cache.Set(context.Background(), "cmp-1@100", rendered, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "cmp-1@100")
	require.True(t, ok)
	require.Equal(t, rendered, got)
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("render-cache", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "cmp-1", "<div />", DefaultExpiration)

	got, ok := cache.Get(context.Background(), "cmp-1")
	require.True(t, ok)
	require.Equal(t, "<div />", got)
}

func TestInMemoryCacheManager_GetWithNoExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("render-cache", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "cmp-missing")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithExistingInvalidValueType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("render-cache", DefaultExpiration, DefaultCleanupInterval)

	cache.cache.Set("cmp-1", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "cmp-1")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithRefreshExtendsTTL(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("render-cache", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "cmp-1", "<div />", 50*time.Millisecond)

	got, ok := cache.GetWithRefresh(context.Background(), "cmp-1", time.Minute)
	require.True(t, ok)
	require.Equal(t, "<div />", got)

	// After the original TTL the refreshed entry should still be present
	time.Sleep(80 * time.Millisecond)
	got, ok = cache.Get(context.Background(), "cmp-1")
	require.True(t, ok)
	require.Equal(t, "<div />", got)
}

func TestInMemoryCacheManager_Delete(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("render-cache", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "cmp-1", "<div />", DefaultExpiration)
	cache.Set(context.Background(), "cmp-2", "<span />", DefaultExpiration)

	require.NoError(t, cache.Delete(context.Background(), "cmp-1", "cmp-2"))

	_, ok := cache.Get(context.Background(), "cmp-1")
	require.False(t, ok)
	_, ok = cache.Get(context.Background(), "cmp-2")
	require.False(t, ok)
}

func TestInMemoryCacheManager_DeleteNoKeysDoesNothing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("render-cache", DefaultExpiration, DefaultCleanupInterval)

	require.NoError(t, cache.Delete(context.Background()))
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("render-cache", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "cmp-1", "<div />", DefaultExpiration)

	require.NoError(t, cache.Flush(context.Background()))

	_, ok := cache.Get(context.Background(), "cmp-1")
	require.False(t, ok)
}

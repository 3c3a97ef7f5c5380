package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type renderInput struct {
	ID string
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	manager := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	calls := 0

	rtc := NewReadThroughCache[string, string, renderInput](
		manager,
		func(ctx context.Context, input renderInput) (string, error) {
			calls++
			return "<" + input.ID + " />", nil
		},
		true,
	)

	got, err := rtc.Get(context.Background(), "key", renderInput{ID: "div"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "<div />", got)

	// Disabled cache means every call goes to the source
	_, err = rtc.Get(context.Background(), "key", renderInput{ID: "div"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestReadThroughCache_Get_CachesValue(t *testing.T) {
	manager := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	calls := 0

	rtc := NewReadThroughCache[string, string, renderInput](
		manager,
		func(ctx context.Context, input renderInput) (string, error) {
			calls++
			return "<" + input.ID + " />", nil
		},
		false,
	)

	got, err := rtc.Get(context.Background(), "key", renderInput{ID: "div"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "<div />", got)

	got, err = rtc.Get(context.Background(), "key", renderInput{ID: "ignored"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "<div />", got, "second call should serve the cached value")
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_Get_SourceError(t *testing.T) {
	manager := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	boom := errors.New("render failed")

	rtc := NewReadThroughCache[string, string, renderInput](
		manager,
		func(ctx context.Context, input renderInput) (string, error) {
			return "", boom
		},
		false,
	)

	_, err := rtc.Get(context.Background(), "key", renderInput{ID: "div"}, time.Minute)
	require.ErrorIs(t, err, boom)

	// Errors must not be cached
	_, ok := manager.Get(context.Background(), "key")
	require.False(t, ok)
}

func TestReadThroughCache_GetWithRefresh_UsesCache(t *testing.T) {
	manager := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	calls := 0

	rtc := NewReadThroughCache[string, string, renderInput](
		manager,
		func(ctx context.Context, input renderInput) (string, error) {
			calls++
			return "<" + input.ID + " />", nil
		},
		false,
	)

	_, err := rtc.GetWithRefresh(context.Background(), "key", renderInput{ID: "div"}, time.Minute)
	require.NoError(t, err)
	_, err = rtc.GetWithRefresh(context.Background(), "key", renderInput{ID: "div"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

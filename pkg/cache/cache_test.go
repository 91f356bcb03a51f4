package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	b, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), b)

	_, err = mc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, mc.Delete(ctx, "a"))
	_, err = mc.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err := mc.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))
	time.Sleep(time.Millisecond)
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), 0))

	assert.Equal(t, 2, mc.Len())
	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	v := []byte("abc")
	require.NoError(t, mc.Set(ctx, "k", v, 0))
	v[0] = 'x'
	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

type failingService struct{ *MemoryCache }

func (f *failingService) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func TestLayeredCacheReadsThroughAndWritesThrough(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2, 10, time.Minute)
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "k", []byte("v"), time.Hour))
	b, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(b))

	require.NoError(t, lc.Set(ctx, "n", []byte("w"), time.Hour))
	b, err = l2.Get(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "w", string(b))

	failing := &failingService{MemoryCache: NewMemoryCache()}
	lf := NewLayeredCache(failing, 10, time.Minute)
	assert.Error(t, lf.Set(ctx, "k", []byte("v"), time.Hour))
	_, err = lf.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

type point struct {
	X int `json:"x"`
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, SetJSON(ctx, mc, "p", point{X: 3}, 0))
	got, err := GetJSON[point](ctx, mc, "p")
	require.NoError(t, err)
	assert.Equal(t, 3, got.X)

	assert.Equal(t, "prices:A,B:2020", GenerateKeyWithParams("prices", "A,B", 2020))
	assert.Len(t, HashKey([]byte("x")), 64)
}

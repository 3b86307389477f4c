package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type item struct {
	Name string `json:"name"`
}

func TestMemoryCacheGetSetExpire(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(time.Minute).WithClock(clk.now)

	var got item
	ok, err := c.Get(ctx, "topic:t1", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "topic:t1", item{Name: "Networking"}, 0))
	ok, err = c.Get(ctx, "topic:t1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Networking", got.Name)

	clk.t = clk.t.Add(59 * time.Second)
	ok, _ = c.Get(ctx, "topic:t1", &got)
	assert.True(t, ok)

	clk.t = clk.t.Add(time.Second)
	ok, _ = c.Get(ctx, "topic:t1", &got)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheCustomTTLAndInvalidate(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Now()}
	c := NewMemoryCache(time.Minute).WithClock(clk.now)

	require.NoError(t, c.Set(ctx, "a", item{Name: "a"}, time.Hour))
	require.NoError(t, c.Set(ctx, "b", item{Name: "b"}, 0))

	clk.t = clk.t.Add(10 * time.Minute)
	var got item
	ok, _ := c.Get(ctx, "a", &got)
	assert.True(t, ok)
	ok, _ = c.Get(ctx, "b", &got)
	assert.False(t, ok)

	require.NoError(t, c.Invalidate(ctx, "a", "missing"))
	ok, _ = c.Get(ctx, "a", &got)
	assert.False(t, ok)
}

func TestMemoryCacheDecodeError(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	require.NoError(t, c.Set(ctx, "k", "plain string", 0))

	var got item
	ok, err := c.Get(ctx, "k", &got)
	assert.False(t, ok)
	assert.Error(t, err)
}

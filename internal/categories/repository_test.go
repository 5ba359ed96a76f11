package categories_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/wastewise/internal/categories"
	"github.com/JaimeStill/wastewise/internal/dbtest"
	"github.com/JaimeStill/wastewise/pkg/cache"
	"github.com/JaimeStill/wastewise/pkg/lifecycle"
)

// memoryCache is an in-process cache.System that records hits.
type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	hits   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Start(*lifecycle.Coordinator) error { return nil }
func (c *memoryCache) Enabled() bool                      { return true }

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memoryCache) Publish(context.Context, string, any) error { return nil }
func (c *memoryCache) Key(parts ...string) string {
	key := "test"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func disabledCache(t *testing.T) cache.System {
	t.Helper()
	c, err := cache.New(&cache.Config{}, discardLogger())
	require.NoError(t, err)
	return c
}

func TestRepositoryList(t *testing.T) {
	db := dbtest.Open(t)
	sys := categories.New(db, disabledCache(t), discardLogger())

	items, err := sys.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 8)

	for i := 1; i < len(items); i++ {
		require.LessOrEqual(t, items[i-1].Name, items[i].Name, "categories must be sorted by name")
	}
}

func TestRepositoryFindByNameCaseInsensitive(t *testing.T) {
	db := dbtest.Open(t)
	sys := categories.New(db, disabledCache(t), discardLogger())
	ctx := context.Background()

	for _, name := range []string{"Plastic", "plastic", "PLASTIC", "  Plastic "} {
		c, err := sys.FindByName(ctx, name)
		require.NoError(t, err, name)
		require.Equal(t, "Plastic", c.Name)
		require.Equal(t, "#2196F3", c.ColorCode)
	}

	c, err := sys.FindByName(ctx, "paper & cardboard")
	require.NoError(t, err)
	require.Equal(t, "Paper & Cardboard", c.Name)
}

func TestRepositoryFindByNameMiss(t *testing.T) {
	db := dbtest.Open(t)
	sys := categories.New(db, disabledCache(t), discardLogger())

	for _, name := range []string{"Plastics", "Plast", "", "Styrofoam"} {
		_, err := sys.FindByName(context.Background(), name)
		require.True(t, errors.Is(err, categories.ErrNotFound), "%q: got %v", name, err)
	}
}

func TestRepositoryFind(t *testing.T) {
	db := dbtest.Open(t)
	sys := categories.New(db, disabledCache(t), discardLogger())
	ctx := context.Background()

	glass, err := sys.FindByName(ctx, "glass")
	require.NoError(t, err)

	found, err := sys.Find(ctx, glass.ID)
	require.NoError(t, err)
	require.Equal(t, glass.Name, found.Name)

	_, err = sys.Find(ctx, uuid.New())
	require.ErrorIs(t, err, categories.ErrNotFound)
}

func TestRepositoryReadsThroughCache(t *testing.T) {
	db := dbtest.Open(t)
	mc := newMemoryCache()
	sys := categories.New(db, mc, discardLogger())
	ctx := context.Background()

	first, err := sys.FindByName(ctx, "Metal")
	require.NoError(t, err)
	require.Equal(t, 0, mc.hits)

	second, err := sys.FindByName(ctx, "METAL")
	require.NoError(t, err)
	require.Equal(t, 1, mc.hits)
	require.Equal(t, first.ID, second.ID)

	_, err = sys.List(ctx)
	require.NoError(t, err)
	items, err := sys.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 8)
	require.Equal(t, 2, mc.hits)
}

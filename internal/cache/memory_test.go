package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	mc := NewMemoryCache()

	mc.Set("task:1", "payload", time.Minute)

	value, found := mc.Get("task:1")
	assert.True(t, found)
	assert.Equal(t, "payload", value)
}

func TestMemoryCache_Get_Missing(t *testing.T) {
	mc := NewMemoryCache()

	_, found := mc.Get("task:missing")
	assert.False(t, found)
}

func TestMemoryCache_Expiry(t *testing.T) {
	mc := NewMemoryCache()

	mc.Set("task:short", "payload", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	_, found := mc.Get("task:short")
	assert.False(t, found)
	assert.Equal(t, 0, mc.Len(), "expired entry should be removed on read")
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	mc := NewMemoryCache()

	mc.Set("task:pinned", "payload", 0)

	_, found := mc.Get("task:pinned")
	assert.True(t, found)
}

func TestMemoryCache_Delete(t *testing.T) {
	mc := NewMemoryCache()

	mc.Set("task:1", "payload", time.Minute)
	mc.Delete("task:1")

	_, found := mc.Get("task:1")
	assert.False(t, found)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	mc := NewMemoryCache()

	mc.Set("tasks_page:u1:10:0", "a", time.Minute)
	mc.Set("tasks_page:u1:10:10", "b", time.Minute)
	mc.Set("stats:u1", "c", time.Minute)

	mc.DeletePattern("tasks_page:u1:*")

	_, found := mc.Get("tasks_page:u1:10:0")
	assert.False(t, found)
	_, found = mc.Get("tasks_page:u1:10:10")
	assert.False(t, found)
	_, found = mc.Get("stats:u1")
	assert.True(t, found, "non-matching key should survive")
}

func TestMemoryCache_Stats(t *testing.T) {
	mc := NewMemoryCache()

	mc.Set("task:1", "payload", time.Minute)
	mc.Get("task:1")
	mc.Get("task:missing")

	stats := mc.Stats()
	assert.Equal(t, 1, stats["entries"])
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 50.0, stats["hit_rate"])
}

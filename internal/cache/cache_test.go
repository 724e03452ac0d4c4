package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c := New[string](0)
	c.SetWithTTL("k", "v", 100*time.Millisecond)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(150 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on read")
}

func TestCache_LazyEvictionWithFakeClock(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[int](time.Minute).WithClock(clock.Now)
	c.Set("a", 1)
	c.SetWithTTL("b", 2, 5*time.Minute)

	clock.Advance(time.Minute)
	assert.True(t, c.Has("a"), "exactly ttl old is still live")

	clock.Advance(time.Second)
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))
	assert.Equal(t, 1, c.Len())
}

func TestCache_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, New[int](0).TTL())
	assert.Equal(t, 5*time.Minute, DefaultTTL)
}

func TestCache_DeleteClearPrefix(t *testing.T) {
	c := New[int](time.Minute)
	c.Set(Key(KindHistorical, "btc-usdt"), 1)
	c.Set(Key(KindWeekly, "BTC-USDT"), 2)
	c.Set(Key(KindWeekly, "ETH-USDT"), 3)

	assert.Equal(t, "BTC-USDT:weekly", Key(KindWeekly, "btc-usdt"))
	assert.Equal(t, 2, c.DeletePrefix(InstrumentPrefix("btc-usdt")))
	assert.Equal(t, 1, c.Len())

	c.Delete(Key(KindWeekly, "ETH-USDT"))
	assert.False(t, c.Has(Key(KindWeekly, "ETH-USDT")))

	c.Set("x", 9)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set("k", i)
			c.Get("k")
		}(i)
	}
	wg.Wait()
	assert.True(t, c.Has("k"))
}

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kestrelstream/hlsproxy/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func entryOf(sz int64) domain.CacheEntry {
	return domain.CacheEntry{
		Bytes:      make([]byte, sz),
		Headers:    map[string]string{},
		InsertedAt: nowMs(),
		SizeBytes:  sz,
	}
}

// TestLRUEviction_S4 mirrors scenario S4: maxEntries=3, set A,B,C, get A,
// set D evicts B (the least recently used after A was promoted).
func TestLRUEviction_S4(t *testing.T) {
	c := New(Config{MaxEntries: 3, MaxMemoryBytes: 1e9})
	defer c.Close()

	c.Set("A", entryOf(1))
	c.Set("B", entryOf(1))
	c.Set("C", entryOf(1))
	_, ok := c.Get("A")
	require.True(t, ok)

	c.Set("D", entryOf(1))

	_, bOK := c.Get("B")
	_, aOK := c.Get("A")
	_, cOK := c.Get("C")
	_, dOK := c.Get("D")

	assert.False(t, bOK, "B should have been evicted")
	assert.True(t, aOK)
	assert.True(t, cOK)
	assert.True(t, dOK)
}

// TestByteBudgetEviction_S5 mirrors scenario S5: maxMemoryBytes=300, three
// 100-byte entries then a fourth evicts the oldest, leaving memBytes=300.
func TestByteBudgetEviction_S5(t *testing.T) {
	c := New(Config{MaxEntries: 100, MaxMemoryBytes: 300})
	defer c.Close()

	c.Set("A", entryOf(100))
	c.Set("B", entryOf(100))
	c.Set("C", entryOf(100))
	c.Set("D", entryOf(100))

	_, aOK := c.Get("A")
	assert.False(t, aOK, "A should have been evicted for budget")

	stats := c.Stats()
	assert.InDelta(t, 300.0/bytesPerMB, stats.CurrentMB, 1e-9)
	assert.Equal(t, 3, stats.Entries)
}

// TestTTLExpiry_S6 mirrors scenario S6: an entry inserted with a 1000ms
// TTL is a miss once synthetic time has advanced past expiry.
func TestTTLExpiry_S6(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxMemoryBytes: 1e9, ExpiryMs: 1000})
	defer c.Close()

	e := entryOf(10)
	e.InsertedAt = nowMs() - 1500
	c.Set("A", e)

	_, ok := c.Get("A")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().CurrentMB)
}

func TestDegenerateSet_OversizedEntryEvictsEverythingAndInserts(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxMemoryBytes: 100})
	defer c.Close()

	c.Set("A", entryOf(50))
	c.Set("B", entryOf(50))
	c.Set("huge", entryOf(500))

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 500.0/bytesPerMB, stats.CurrentMB, 1e-9)
}

func TestDelete(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxMemoryBytes: 1e9})
	defer c.Close()

	c.Set("A", entryOf(10))
	assert.True(t, c.Delete("A"))
	assert.False(t, c.Delete("A"))

	_, ok := c.Get("A")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxMemoryBytes: 1e9})
	defer c.Close()

	c.Set("A", entryOf(10))
	c.Set("B", entryOf(10))
	c.Clear()

	stats := c.Stats()
	assert.Zero(t, stats.Entries)
	assert.Zero(t, stats.CurrentMB)
}

// TestConcurrentAccess_Invariant7 hammers the cache from many goroutines
// and asserts the byte-accounting invariant holds afterwards.
func TestConcurrentAccess_Invariant7(t *testing.T) {
	c := New(Config{MaxEntries: 50, MaxMemoryBytes: 10_000})
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%20)
			c.Set(key, entryOf(int64(10+i%5)))
			c.Get(key)
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.LessOrEqual(t, stats.CurrentMB, stats.MaxMB)
	assert.GreaterOrEqual(t, stats.CurrentMB, 0.0)
	assert.LessOrEqual(t, stats.Entries, 50)
}

func TestCleanup_RemovesOnlyExpired(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxMemoryBytes: 1e9, ExpiryMs: 1000})
	defer c.Close()

	fresh := entryOf(10)
	stale := entryOf(10)
	stale.InsertedAt = nowMs() - 5000

	c.Set("fresh", fresh)
	c.Set("stale", stale)

	removed := c.Cleanup()
	assert.Equal(t, 1, removed)

	_, freshOK := c.Get("fresh")
	_, staleOK := c.Get("stale")
	assert.True(t, freshOK)
	assert.False(t, staleOK)
}

func TestSweepLoopStopsOnClose(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxMemoryBytes: 1e9, SweepInterval: time.Millisecond})
	time.Sleep(5 * time.Millisecond)
	c.Close()
}

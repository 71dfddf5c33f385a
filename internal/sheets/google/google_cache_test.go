package google

import (
	"context"
	"sync"
	"testing"
	"time"

	"fintrack/internal/log"
)

func TestRowIndexCache_FreshIndexSkipsRead(t *testing.T) {
	// svc is nil: any read of the id column would panic.
	c := newClient(nil, Config{SpreadsheetID: "test"}, log.Discard())
	c.rowIndex = map[string]int{"tx-1": 2}
	c.cachedRowCount = 2
	c.cacheExpiresAt = time.Now().Add(time.Minute)

	if err := c.loadIndexLocked(context.Background()); err != nil {
		t.Fatalf("loadIndexLocked() error = %v", err)
	}
	if c.rowIndex["tx-1"] != 2 || c.cachedRowCount != 2 {
		t.Errorf("cached index changed: %v / %d", c.rowIndex, c.cachedRowCount)
	}
}

func TestInvalidateRowCache(t *testing.T) {
	c := newClient(nil, Config{SpreadsheetID: "test", RowCacheTTL: 10 * time.Minute}, log.Discard())
	c.rowIndex = map[string]int{"tx-1": 2}
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)

	c.InvalidateRowCache()

	c.mu.Lock()
	valid := time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if valid {
		t.Error("cache should be expired after invalidation")
	}
}

func TestRowIndexCache_InitialState(t *testing.T) {
	c := newClient(nil, Config{SpreadsheetID: "test", RowCacheTTL: 2 * time.Minute}, log.Discard())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rowIndex != nil || c.cachedRowCount != 0 {
		t.Errorf("initial index = %v / %d, want empty", c.rowIndex, c.cachedRowCount)
	}
	if time.Now().Before(c.cacheExpiresAt) {
		t.Error("initial cacheExpiresAt should be in the past")
	}
	if c.cacheValidDuration != 2*time.Minute {
		t.Errorf("cache duration = %v, want 2m", c.cacheValidDuration)
	}
}

func TestRowIndexCache_ConcurrentInvalidation(t *testing.T) {
	c := newClient(nil, Config{SpreadsheetID: "test"}, log.Discard())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.mu.Lock()
			c.cachedRowCount = i
			c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
			c.mu.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			c.InvalidateRowCache()
		}
	}()
	wg.Wait()
}

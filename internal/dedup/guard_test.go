package dedup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuard_FirstSeenAccepted(t *testing.T) {
	guard := NewGuard(time.Hour)

	assert.True(t, guard.ShouldProcess("msg-1"))
	assert.False(t, guard.ShouldProcess("msg-1"))
	assert.False(t, guard.ShouldProcess("msg-1"))

	// A different ID is unaffected.
	assert.True(t, guard.ShouldProcess("msg-2"))
}

func TestGuard_ClearAllowsReprocessing(t *testing.T) {
	guard := NewGuard(time.Hour)

	assert.True(t, guard.ShouldProcess("msg-1"))
	guard.clear()
	assert.True(t, guard.ShouldProcess("msg-1"))
}

func TestGuard_BackgroundClear(t *testing.T) {
	guard := NewGuard(20 * time.Millisecond)
	guard.Start()
	defer guard.Stop()

	assert.True(t, guard.ShouldProcess("msg-1"))

	assert.Eventually(t, func() bool {
		guard.mu.Lock()
		defer guard.mu.Unlock()
		return len(guard.seen) == 0
	}, time.Second, 5*time.Millisecond)

	assert.True(t, guard.ShouldProcess("msg-1"))
}

func TestGuard_StopIsIdempotent(t *testing.T) {
	guard := NewGuard(time.Hour)
	guard.Start()
	guard.Stop()
	guard.Stop()
}

func TestGuard_ConcurrentAccess(t *testing.T) {
	guard := NewGuard(time.Hour)

	var wg sync.WaitGroup
	accepted := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.ShouldProcess("same-id") {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for range accepted {
		count++
	}
	assert.Equal(t, 1, count, "exactly one goroutine should win")
}

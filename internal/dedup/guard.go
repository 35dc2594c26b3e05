// Package dedup prevents reprocessing of already-seen message IDs.
package dedup

import (
	"sync"
	"time"

	"github.com/washlane/booking-assistant/pkg/metrics"
)

// Guard is a time-windowed set of seen message IDs. The whole set is cleared
// on a fixed period to bound memory: an ID seen just before a clear and
// resent just after will be reprocessed. That staleness window is accepted;
// this is not an exactly-once guarantee.
type Guard struct {
	mu   sync.Mutex
	seen map[string]struct{}

	window time.Duration
	done   chan struct{}
	once   sync.Once
}

// NewGuard creates a guard whose seen-set is cleared every window.
func NewGuard(window time.Duration) *Guard {
	if window <= 0 {
		window = time.Hour
	}
	return &Guard{
		seen:   make(map[string]struct{}),
		window: window,
		done:   make(chan struct{}),
	}
}

// ShouldProcess reports whether the ID is new in the current window, marking
// it seen when it is.
func (g *Guard) ShouldProcess(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, dup := g.seen[id]; dup {
		metrics.DedupDrops.Inc()
		return false
	}
	g.seen[id] = struct{}{}
	return true
}

// Start launches the background clear loop.
func (g *Guard) Start() {
	go func() {
		ticker := time.NewTicker(g.window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.clear()
			case <-g.done:
				return
			}
		}
	}()
}

// Stop terminates the background clear loop. Safe to call more than once.
func (g *Guard) Stop() {
	g.once.Do(func() { close(g.done) })
}

func (g *Guard) clear() {
	g.mu.Lock()
	g.seen = make(map[string]struct{})
	g.mu.Unlock()
}

// Package memory provides the bounded per-conversation message store.
package memory

import (
	"sort"
	"sync"

	"github.com/washlane/booking-assistant/internal/model"
	"github.com/washlane/booking-assistant/pkg/metrics"
)

// Store keeps an ordered message log per conversation key, capped at a fixed
// capacity with strict FIFO eviction. The system prompt is never stored here;
// callers re-supply it per turn. Contents live only as long as the process.
type Store struct {
	mu            sync.RWMutex
	limit         int
	conversations map[string][]model.Message
}

// NewStore creates a store with the given per-conversation capacity.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 10
	}
	return &Store{
		limit:         limit,
		conversations: make(map[string][]model.Message),
	}
}

// Append adds messages to the log for key, evicting from the front until the
// log is back within capacity.
func (s *Store) Append(key string, msgs ...model.Message) {
	if len(msgs) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, exists := s.conversations[key]
	if !exists {
		metrics.ConversationsActive.Inc()
	}
	history = append(history, msgs...)
	if over := len(history) - s.limit; over > 0 {
		history = append([]model.Message(nil), history[over:]...)
	}
	s.conversations[key] = history
}

// Messages returns a copy of the current log for key, oldest first.
func (s *Store) Messages(key string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.conversations[key]
	out := make([]model.Message, len(history))
	copy(out, history)
	return out
}

// Clear drops the log for key.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[key]; exists {
		delete(s.conversations, key)
		metrics.ConversationsActive.Dec()
	}
}

// Keys returns all conversation keys currently held, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.conversations))
	for k := range s.conversations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of messages stored for key.
func (s *Store) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations[key])
}

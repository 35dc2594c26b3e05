// Package scheduler manages recurring and one-shot outbound message jobs,
// independent of the inbound dialogue.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/washlane/booking-assistant/internal/channel"
	"github.com/washlane/booking-assistant/pkg/logger"
	"github.com/washlane/booking-assistant/pkg/metrics"
)

// Job is one outbound message schedule. Interval 0 fires once.
type Job struct {
	To        string
	Message   string
	Immediate bool
	Delay     time.Duration
	Interval  time.Duration
}

// Scheduler tracks cancelable timers in a keyed collection. Its lifecycle is
// tied to channel connectivity: Start on ready, Stop on disconnect so jobs
// never fire into a dead channel.
type Scheduler struct {
	sender channel.Sender
	logger *logger.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New creates a scheduler delivering through the given sender.
func New(sender channel.Sender, log *logger.Logger) *Scheduler {
	return &Scheduler{
		sender:  sender,
		logger:  log,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start schedules every job: an immediate fire when flagged, a one-shot timer
// honoring the delay, and a repeating timer when the interval is positive.
func (s *Scheduler) Start(jobs []Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, job := range jobs {
		key := fmt.Sprintf("job_%d", i)
		ctx, cancel := context.WithCancel(context.Background())
		s.cancels[key] = cancel
		go s.run(ctx, key, job)
	}
}

func (s *Scheduler) run(ctx context.Context, key string, job Job) {
	if job.Immediate {
		s.fire(ctx, key, job)
	}

	// The delayed one-shot is skipped when the job already fired immediately
	// and carries no delay of its own.
	if job.Delay > 0 || !job.Immediate {
		select {
		case <-time.After(job.Delay):
		case <-ctx.Done():
			return
		}
		s.fire(ctx, key, job)
	}

	if job.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.fire(ctx, key, job)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, key string, job Job) {
	if ctx.Err() != nil {
		return
	}
	if err := s.sender.Send(ctx, job.To, job.Message); err != nil {
		s.logger.Error("scheduled send failed",
			zap.String("job", key),
			zap.String("to", job.To),
			zap.Error(err),
		)
		return
	}
	metrics.ScheduledSends.WithLabelValues(key).Inc()
	metrics.RepliesSent.WithLabelValues("scheduled").Inc()
}

// Stop cancels every tracked timer and clears the collection. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, cancel := range s.cancels {
		cancel()
		delete(s.cancels, key)
	}
}

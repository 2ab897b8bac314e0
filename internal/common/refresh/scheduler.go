// Package refresh runs named periodic callbacks, such as re-reading the lead feed.
package refresh

import (
	"context"
	"sync"
	"time"

	"lead-automation/internal/common/logger"
)

// DefaultPeriod is used when the scheduler is built with a non-positive period.
const DefaultPeriod = 30 * time.Second

// Callback runs on every tick. ctx is cancelled when the subscription stops.
type Callback func(ctx context.Context)

// Handle identifies one running subscription.
type Handle struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Name returns the name the handle was started under, or "" for anonymous handles.
func (h *Handle) Name() string {
	return h.name
}

// Done is closed once the subscription's goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) stop() {
	h.once.Do(h.cancel)
}

// Scheduler owns every subscription and the name table.
type Scheduler struct {
	mu     sync.Mutex
	period time.Duration
	subs   map[*Handle]struct{}
	byName map[string]*Handle
	logger logger.Logger
}

func NewScheduler(period time.Duration, log logger.Logger) *Scheduler {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Scheduler{
		period: period,
		subs:   make(map[*Handle]struct{}),
		byName: make(map[string]*Handle),
		logger: log.WithFields(map[string]interface{}{"component": "refresh"}),
	}
}

func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Schedule runs cb every period until the returned handle is stopped.
// Firings of one subscription never overlap.
func (s *Scheduler) Schedule(cb Callback) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleLocked("", cb)
}

func (s *Scheduler) scheduleLocked(name string, cb Callback) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{name: name, cancel: cancel, done: make(chan struct{})}
	s.subs[h] = struct{}{}

	go s.run(ctx, h, cb)
	return h
}

func (s *Scheduler) run(ctx context.Context, h *Handle, cb Callback) {
	defer close(h.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when a tick and the cancel are both ready.
			if ctx.Err() != nil {
				return
			}
			s.fire(ctx, h, cb)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, h *Handle, cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("refresh callback panicked", map[string]interface{}{
				"name":  h.name,
				"panic": r,
			})
		}
	}()
	cb(ctx)
}

// Stop cancels h. Stopping an already stopped or nil handle is a no-op.
func (s *Scheduler) Stop(h *Handle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(h)
}

func (s *Scheduler) stopLocked(h *Handle) {
	h.stop()
	delete(s.subs, h)
	if h.name != "" && s.byName[h.name] == h {
		delete(s.byName, h.name)
	}
}

// Start schedules cb under name, stopping any subscription already holding it.
func (s *Scheduler) Start(name string, cb Callback) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byName[name]; ok {
		s.stopLocked(prev)
	}
	h := s.scheduleLocked(name, cb)
	s.byName[name] = h

	s.logger.Debug("refresh started", map[string]interface{}{
		"name":   name,
		"period": s.period.String(),
	})
	return h
}

// StopName stops the subscription registered under name, if any.
func (s *Scheduler) StopName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.byName[name]; ok {
		s.stopLocked(h)
	}
}

// StopAll stops every subscription, named or not.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for h := range s.subs {
		s.stopLocked(h)
	}
}

// Active reports whether a subscription is registered under name.
func (s *Scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byName[name]
	return ok
}

// Len returns the number of running subscriptions.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

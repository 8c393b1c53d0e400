package dispatch

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop is the main-thread message queue. Background goroutines (watch
// delivery, timers) post closures; the owning goroutine pumps them.
// All registry, ledger and menu mutation happens inside pumped
// messages or directly on the owning goroutine — never across threads.
type Loop struct {
	mu    sync.Mutex
	queue []func()
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Post enqueues a message from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// Pump runs every queued message on the calling goroutine and returns
// how many ran. Must only be called from the owning goroutine.
func (l *Loop) Pump() int {
	l.mu.Lock()
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// pollInterval paces the WaitWithPump flag checks.
const pollInterval = 10 * time.Millisecond

// WaitWithPump blocks the caller up to timeout while still servicing
// the loop: it polls the completion flag, pumps any pending messages,
// and returns as soon as either the flag becomes true or the timeout
// elapses. The wait itself cannot be cancelled, only completed early
// via the flag. Returns the flag's final state.
func (l *Loop) WaitWithPump(completed *atomic.Bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if completed.Load() {
			return true
		}
		l.Pump()
		if completed.Load() {
			return true
		}
		if !time.Now().Before(deadline) {
			return completed.Load()
		}
		time.Sleep(pollInterval)
	}
}

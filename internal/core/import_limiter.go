package core

// import_limiter.go bounds how many imports read and parse at once.
//
// Each import holds its whole file in memory while parsing, so a burst of
// large uploads is capped by slots rather than by the request rate alone.
// A caller that cannot get a slot within the wait window gets
// ErrTooManyImports. Drain blocks until in-flight imports finish, which the
// server uses during shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyImports is returned when no import slot frees up in time.
var ErrTooManyImports = errors.New("too many concurrent imports")

const (
	// DefaultMaxConcurrentImports is the slot count when none is configured.
	DefaultMaxConcurrentImports = 4
	// DefaultImportWait is how long Acquire waits for a slot.
	DefaultImportWait = 10 * time.Second
)

// ImportLimiter is a counting semaphore over import slots.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu      sync.Mutex
	active  int
	drained *sync.Cond
}

// LimiterStatus is a snapshot for monitoring.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// NewImportLimiter allows maxConcurrent imports at once. Non-positive
// arguments select the defaults.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultImportWait
	}
	l := &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
	l.drained = sync.NewCond(&l.mu)
	return l
}

// Acquire takes a slot, waiting at most the configured window. The caller
// must Release after a nil return. A cancelled ctx returns ctx.Err().
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyImports
	}
}

// Release frees a slot taken by Acquire.
func (l *ImportLimiter) Release() {
	<-l.slots

	l.mu.Lock()
	l.active--
	if l.active == 0 {
		l.drained.Broadcast()
	}
	l.mu.Unlock()
}

// Active returns the number of held slots.
func (l *ImportLimiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Status returns the current slot usage.
func (l *ImportLimiter) Status() LimiterStatus {
	active := l.Active()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}

// Drain blocks until no slot is held or ctx is done.
func (l *ImportLimiter) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.mu.Lock()
		for l.active > 0 && ctx.Err() == nil {
			l.drained.Wait()
		}
		l.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// Wake the waiter so it observes ctx and exits.
		l.mu.Lock()
		l.drained.Broadcast()
		l.mu.Unlock()
		<-done
		return ctx.Err()
	}
}

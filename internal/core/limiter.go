package core

// limiter.go bounds how many conversions run at once. Each conversion holds
// its whole input, both exports and the catalog results in memory, so the
// slot count caps peak memory. Callers that cannot get a slot within maxWait
// fail with ErrTooManyConversions.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyConversions is returned when every slot stays busy for the whole
// wait period. Clients should retry after a short delay.
var ErrTooManyConversions = errors.New("too many concurrent conversions, please try again later")

// DefaultMaxConcurrent is the slot count used when none is configured.
const DefaultMaxConcurrent = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ConvertLimiter is a counting semaphore over conversion slots.
type ConvertLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewConvertLimiter allows at most maxConcurrent simultaneous conversions.
func NewConvertLimiter(maxConcurrent int, maxWait time.Duration) *ConvertLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ConvertLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. It returns ctx.Err() if ctx ends first and
// ErrTooManyConversions if the wait period expires.
// The caller MUST call Release after a successful Acquire.
func (l *ConvertLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyConversions
	}
}

// TryAcquire takes a slot if one is free, without blocking.
func (l *ConvertLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *ConvertLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of running conversions.
func (l *ConvertLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *ConvertLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no conversion is running or ctx ends.
// Used for graceful shutdown.
func (l *ConvertLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a snapshot of the limiter for health reporting.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *ConvertLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

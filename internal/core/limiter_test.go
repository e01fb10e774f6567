package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestConvertLimiter_AcquireRelease(t *testing.T) {
	limiter := NewConvertLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Status().Available; got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	status := limiter.Status()
	if status.Active != 2 {
		t.Errorf("Active = %d, want 2", status.Active)
	}
	if status.Available != 0 {
		t.Errorf("Available = %d, want 0", status.Available)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestConvertLimiter_RejectsWhenFull(t *testing.T) {
	limiter := NewConvertLimiter(1, 100*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTooManyConversions) {
		t.Errorf("Acquire() error = %v, want ErrTooManyConversions", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("gave up too early: %v", elapsed)
	}
}

func TestConvertLimiter_NeverExceedsMax(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewConvertLimiter(maxConcurrent, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			maxObserved = max(maxObserved, limiter.ActiveCount())
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)
		}()
	}
	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("observed %d active, max %d", maxObserved, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestConvertLimiter_TryAcquire(t *testing.T) {
	limiter := NewConvertLimiter(1, time.Second)

	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire() {
		t.Error("second TryAcquire should fail")
		limiter.Release()
	}
	limiter.Release()

	if !limiter.TryAcquire() {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestConvertLimiter_ContextCancellation(t *testing.T) {
	limiter := NewConvertLimiter(1, 5*time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after cancellation")
	}
}

func TestConvertLimiter_WaitForDrain(t *testing.T) {
	limiter := NewConvertLimiter(2, time.Second)
	ctx := context.Background()
	_ = limiter.Acquire(ctx)
	_ = limiter.Acquire(ctx)

	done := make(chan error, 1)
	go func() { done <- limiter.WaitForDrain(context.Background()) }()

	limiter.Release()
	select {
	case <-done:
		t.Fatal("WaitForDrain returned with one active")
	case <-time.After(80 * time.Millisecond):
	}

	limiter.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after all released")
	}
}

func TestConvertLimiter_Defaults(t *testing.T) {
	limiter := NewConvertLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrent {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrent)
	}
}

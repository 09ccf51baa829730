package qos

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFixedGate_Limit(t *testing.T) {
	if _, err := NewFixedGate(0); err == nil {
		t.Fatal("expected error for zero limit")
	}

	g, err := NewFixedGate(3)
	if err != nil {
		t.Fatal(err)
	}

	var inflight, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(context.Background()); err != nil {
				t.Error(err)
				return
			}
			defer g.Release()

			n := atomic.AddInt32(&inflight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inflight, -1)
		}()
	}
	wg.Wait()

	if peak > 3 {
		t.Errorf("peak in-flight %d exceeds limit 3", peak)
	}
}

func TestFixedGate_AcquireCancelled(t *testing.T) {
	g, _ := NewFixedGate(1)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := g.Acquire(ctx); err == nil {
		t.Fatal("expected acquire to fail when gate is full")
	}
}

func TestNewGate(t *testing.T) {
	g, err := NewGate(10, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(*FixedGate); !ok {
		t.Errorf("expected *FixedGate, got %T", g)
	}

	g, err = NewGate(10, true)
	if err != nil {
		t.Fatal(err)
	}
	l, ok := g.(*AdaptiveLimiter)
	if !ok {
		t.Fatalf("expected *AdaptiveLimiter, got %T", g)
	}
	if l.CurrentLimit() != 5 || l.MaxLimit() != 10 {
		t.Errorf("unexpected limits: current=%d max=%d", l.CurrentLimit(), l.MaxLimit())
	}

	if _, err := NewGate(0, true); err == nil {
		t.Error("expected error for zero limit")
	}
}

func TestAdaptiveLimiter_Increase(t *testing.T) {
	l := NewAdaptiveLimiter(10, 1, 20)

	// 10 次成功 -> 11
	for i := 0; i < 10; i++ {
		l.OnSuccess()
	}
	if l.CurrentLimit() != 11 {
		t.Errorf("Expected limit increase to 11, got %d", l.CurrentLimit())
	}

	// 再 11 次成功 -> 12
	for i := 0; i < 11; i++ {
		l.OnSuccess()
	}
	if l.CurrentLimit() != 12 {
		t.Errorf("Expected limit increase to 12, got %d", l.CurrentLimit())
	}
}

func TestAdaptiveLimiter_CappedAtMax(t *testing.T) {
	l := NewAdaptiveLimiter(2, 1, 3)
	for i := 0; i < 100; i++ {
		l.OnSuccess()
	}
	if l.CurrentLimit() != 3 {
		t.Errorf("Expected limit capped at 3, got %d", l.CurrentLimit())
	}
}

func TestAdaptiveLimiter_Decrease(t *testing.T) {
	l := NewAdaptiveLimiter(100, 1, 200)

	// 100 * 0.7 = 70
	l.OnFailure()
	if l.CurrentLimit() != 70 {
		t.Errorf("Expected limit decrease to 70, got %d", l.CurrentLimit())
	}

	small := NewAdaptiveLimiter(1, 1, 10)
	small.OnFailure()
	if small.CurrentLimit() != 1 {
		t.Errorf("Limit should not go below min, got %d", small.CurrentLimit())
	}
}

func TestAdaptiveLimiter_AcquireRelease(t *testing.T) {
	l := NewAdaptiveLimiter(2, 1, 10)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Acquire(short); err == nil {
		t.Fatal("third acquire should block until timeout")
	}

	l.Release()
	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
}


func TestAdaptiveLimiter_ShrinkWhileBusy(t *testing.T) {
	l := NewAdaptiveLimiter(5, 1, 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatal(err)
		}
	}

	// 5 -> 3，已借出的 5 个许可不回收
	l.OnFailure()
	if l.CurrentLimit() != 3 {
		t.Errorf("Limit should be 3, got %d", l.CurrentLimit())
	}
	if l.InFlight() != 5 {
		t.Errorf("InFlight should stay 5, got %d", l.InFlight())
	}

	// 归还 2 个后 inFlight == limit，仍然不能获取
	l.Release()
	l.Release()
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Acquire(short); err == nil {
		t.Fatal("acquire should block while in-flight equals the shrunk limit")
	}

	// 再归还 1 个即可获取
	l.Release()
	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if l.InFlight() != 3 {
		t.Errorf("InFlight should be 3, got %d", l.InFlight())
	}
}

func TestAdaptiveLimiter_GrowWakesWaiter(t *testing.T) {
	l := NewAdaptiveLimiter(1, 1, 2)
	ctx := context.Background()
	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}

	acquired := make(chan error, 1)
	go func() { acquired <- l.Acquire(ctx) }()

	select {
	case <-acquired:
		t.Fatal("second acquire should wait for the limit to grow")
	case <-time.After(20 * time.Millisecond):
	}

	l.OnSuccess() // 1 -> 2
	select {
	case err := <-acquired:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by limit increase")
	}
	if l.InFlight() != 2 {
		t.Errorf("InFlight should be 2, got %d", l.InFlight())
	}
}

func TestAdaptiveLimiter_ExtraReleaseIgnored(t *testing.T) {
	l := NewAdaptiveLimiter(1, 1, 1)
	l.Release()
	if l.InFlight() != 0 {
		t.Errorf("InFlight should stay 0, got %d", l.InFlight())
	}
}

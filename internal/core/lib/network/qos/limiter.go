package qos

import (
	"context"
	"sync"
)

// decreaseFactor 失败后并发上限乘以该系数
const decreaseFactor = 0.7

// AdaptiveLimiter AIMD 并发控制
//
// 每连续成功 limit 次上限加 1，每次失败上限乘以 0.7。
// 缩容时已借出的许可不会被收回，只是在 inFlight 降到新上限以下之前不再发放，
// 因此任意时刻 inFlight <= max(上限历史值) <= maxLimit。
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limit     int
	minLimit  int
	maxLimit  int
	inFlight  int
	successes int

	// changed 在 inFlight 或 limit 变化时被关闭并替换，用于唤醒等待者
	changed chan struct{}
}

// NewAdaptiveLimiter initial 会被修正到 [min, max] 区间
func NewAdaptiveLimiter(initial, min, max int) *AdaptiveLimiter {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	initial = clamp(initial, min, max)

	return &AdaptiveLimiter{
		limit:    initial,
		minLimit: min,
		maxLimit: max,
		changed:  make(chan struct{}),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Acquire 阻塞直到 inFlight 低于当前上限或 ctx 取消
func (l *AdaptiveLimiter) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		if l.inFlight < l.limit {
			l.inFlight++
			l.mu.Unlock()
			return nil
		}
		wait := l.changed
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release 归还许可，多余的 Release 被忽略
func (l *AdaptiveLimiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight == 0 {
		return
	}
	l.inFlight--
	l.broadcast()
}

// OnSuccess 每连续成功 limit 次，上限 +1
func (l *AdaptiveLimiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successes++
	if l.successes < l.limit {
		return
	}
	l.successes = 0
	if l.limit < l.maxLimit {
		l.limit++
		l.broadcast()
	}
}

// OnFailure 上限乘以 0.7，至少减 1，不低于 minLimit
func (l *AdaptiveLimiter) OnFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := int(float64(l.limit) * decreaseFactor)
	if next >= l.limit {
		next = l.limit - 1
	}
	l.limit = clamp(next, l.minLimit, l.maxLimit)
	l.successes = 0
}

// 调用方需持有 mu
func (l *AdaptiveLimiter) broadcast() {
	close(l.changed)
	l.changed = make(chan struct{})
}

// CurrentLimit 当前并发上限
func (l *AdaptiveLimiter) CurrentLimit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}

// InFlight 当前已借出的许可数
func (l *AdaptiveLimiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// MaxLimit 并发上限的天花板
func (l *AdaptiveLimiter) MaxLimit() int {
	return l.maxLimit
}

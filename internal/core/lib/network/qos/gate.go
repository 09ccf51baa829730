package qos

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Gate 并发闸门，限制同时在途的探测数量
// Acquire 与 Release 必须成对调用
type Gate interface {
	Acquire(ctx context.Context) error
	Release()
}

// Feedback 可选接口，闸门实现后可根据探测结果调整并发
type Feedback interface {
	OnSuccess()
	OnFailure()
}

// FixedGate 固定上限的并发闸门
type FixedGate struct {
	sem   *semaphore.Weighted
	limit int
}

// NewFixedGate limit 必须 >= 1
func NewFixedGate(limit int) (*FixedGate, error) {
	if limit < 1 {
		return nil, fmt.Errorf("invalid gate limit: %d", limit)
	}
	return &FixedGate{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: limit,
	}, nil
}

func (g *FixedGate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

func (g *FixedGate) Release() {
	g.sem.Release(1)
}

// CurrentLimit 固定闸门的上限不会变化
func (g *FixedGate) CurrentLimit() int {
	return g.limit
}

// NewGate 根据是否自适应创建闸门
// 自适应模式下 limit 作为上限，初始并发为上限的一半
func NewGate(limit int, adaptive bool) (Gate, error) {
	if limit < 1 {
		return nil, fmt.Errorf("invalid gate limit: %d", limit)
	}
	if !adaptive {
		return NewFixedGate(limit)
	}
	initial := limit / 2
	if initial < 1 {
		initial = 1
	}
	return NewAdaptiveLimiter(initial, 1, limit), nil
}

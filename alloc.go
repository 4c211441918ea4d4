package freelist

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimitExceeded is returned by MemoryLimiter when a reservation
// would exceed its budget.
var ErrMemoryLimitExceeded = errors.New("freelist: memory limit exceeded")

// MemoryAcquirer reserves memory on behalf of a FreeList. AcquireMemory must
// not block; a non-nil error fails the allocation that triggered it.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// MemoryLimiter is a MemoryAcquirer with a fixed byte budget. It may be
// shared by several free lists.
type MemoryLimiter struct {
	limit int64
	sem   *semaphore.Weighted // nil if unlimited
	used  atomic.Int64
}

// NewMemoryLimiter returns a limiter with the given budget in bytes. A limit
// of 0 or less only tracks usage.
func NewMemoryLimiter(limit int64) *MemoryLimiter {
	m := &MemoryLimiter{limit: limit}
	if limit > 0 {
		m.sem = semaphore.NewWeighted(limit)
	}
	return m
}

// AcquireMemory reserves bytes or returns ErrMemoryLimitExceeded.
func (m *MemoryLimiter) AcquireMemory(bytes int64) error {
	if bytes <= 0 {
		return nil
	}
	if m.sem != nil && !m.sem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}
	m.used.Add(bytes)
	return nil
}

// ReleaseMemory returns bytes to the budget.
func (m *MemoryLimiter) ReleaseMemory(bytes int64) {
	if bytes <= 0 {
		return
	}
	if m.sem != nil {
		m.sem.Release(bytes)
	}
	m.used.Add(-bytes)
}

// Used returns the number of bytes currently reserved.
func (m *MemoryLimiter) Used() int64 { return m.used.Load() }

// Limit returns the configured budget, or 0 if unlimited.
func (m *MemoryLimiter) Limit() int64 {
	if m.limit < 0 {
		return 0
	}
	return m.limit
}

// Package sync provides synchronization primitive implementations for spinlocks
// and mutexes.
package sync

import "sync/atomic"

var (
	// TODO: replace with real yield function when context-switching is implemented.
	yieldFn func()
)

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
type Spinlock struct {
	state      uint32
	acquires   uint64
	contention uint64
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Spinlock itself has no notion of ownership; a task that re-acquires a lock
// it already holds will deadlock against itself. Code that needs to guard
// against self-reentrancy should use Mutex instead, which panics rather than
// deadlocking.
func (l *Spinlock) Acquire() {
	atomic.AddUint64(&l.acquires, 1)
	if l.TryToAcquire() {
		return
	}

	atomic.AddUint64(&l.contention, 1)
	archAcquireSpinlock(&l.state, 1)
}

// ContentionStats reports how many times Acquire was called on this lock and
// how many of those calls found it already held. Read by cmd/vmmprof to
// build a contention profile; has no effect on locking behavior.
func (l *Spinlock) ContentionStats() (acquires, contended uint64) {
	return atomic.LoadUint64(&l.acquires), atomic.LoadUint64(&l.contention)
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}

// archAcquireSpinlock is an arch-specific implementation for acquiring the lock.
func archAcquireSpinlock(state *uint32, attemptsBeforeYielding uint32)

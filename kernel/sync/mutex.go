package sync

import "github.com/Amjad50/OS/kernel/cpu"

// pinnedCPU is the subset of cpu.PerCPU that Mutex relies on. It exists so
// tests can substitute a fake CPU without exercising the real cli/sti asm
// stubs.
type pinnedCPU interface {
	PushCLI()
	PopCLI()
	ID() uint32
}

var currentCPUFn = func() pinnedCPU { return cpu.Current() }

// Mutex wraps a value of type T behind a Spinlock, additionally recording
// which CPU currently holds the lock. Unlike Spinlock, acquiring a Mutex
// already held by the calling CPU panics instead of deadlocking, and
// acquisition disables interrupts on the calling CPU for as long as the lock
// is held to prevent an interrupt handler from trying to re-enter the same
// critical section.
type Mutex[T any] struct {
	lock     Spinlock
	ownerCPU int64
	data     T
}

// NewMutex creates a new Mutex guarding data.
func NewMutex[T any](data T) *Mutex[T] {
	return &Mutex[T]{ownerCPU: -1, data: data}
}

// ContentionStats reports how many times Lock was called on this mutex and
// how many of those calls found it already held. See Spinlock.ContentionStats.
func (m *Mutex[T]) ContentionStats() (acquires, contended uint64) {
	return m.lock.ContentionStats()
}

// MutexGuard provides access to the value guarded by a locked Mutex. The
// guard must be released via Unlock once the caller is done with it.
type MutexGuard[T any] struct {
	m *Mutex[T]
}

// Lock acquires the mutex, disabling interrupts on the current CPU. Calling
// Lock while the same CPU already holds the mutex panics rather than
// deadlocking.
func (m *Mutex[T]) Lock() *MutexGuard[T] {
	c := currentCPUFn()
	c.PushCLI() // disable interrupts to avoid a self-deadlock via interrupt handler

	if m.ownerCPU == int64(c.ID()) {
		c.PopCLI()
		panic("sync: Mutex already locked by this CPU")
	}

	m.lock.Acquire()
	m.ownerCPU = int64(c.ID())

	return &MutexGuard[T]{m: m}
}

// RunWith locks the mutex, invokes fn with a pointer to the guarded value and
// unlocks the mutex before returning fn's result.
func (m *Mutex[T]) RunWith(fn func(*T) any) any {
	g := m.Lock()
	defer g.Unlock()
	return fn(&m.data)
}

// Get returns a pointer to the value guarded by this (already-locked) guard.
func (g *MutexGuard[T]) Get() *T {
	return &g.m.data
}

// Unlock releases the mutex and restores the calling CPU's interrupt state.
// Unlock must be called exactly once per successful Lock call, by the same
// CPU that acquired it.
func (g *MutexGuard[T]) Unlock() {
	g.m.ownerCPU = -1
	g.m.lock.Release()
	currentCPUFn().PopCLI()
}

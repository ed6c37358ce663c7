package sync

import (
	"runtime"
	"testing"
)

// fakeCPU is a pinnedCPU stand-in that records PushCLI/PopCLI nesting
// without touching the real cli/sti instructions.
type fakeCPU struct {
	id   uint32
	nCli uint32
}

func (c *fakeCPU) PushCLI() { c.nCli++ }
func (c *fakeCPU) PopCLI() {
	if c.nCli == 0 {
		panic("fakeCPU: PopCLI called without a matching PushCLI")
	}
	c.nCli--
}
func (c *fakeCPU) ID() uint32 { return c.id }

func withFakeCPU(id uint32) func() {
	orig := currentCPUFn
	c := &fakeCPU{id: id}
	currentCPUFn = func() pinnedCPU { return c }
	return func() { currentCPUFn = orig }
}

func TestMutexLockUnlock(t *testing.T) {
	defer func(orig func()) { yieldFn = orig }(yieldFn)
	yieldFn = runtime.Gosched
	defer withFakeCPU(0)()

	m := NewMutex(42)

	g := m.Lock()
	if got := *g.Get(); got != 42 {
		t.Errorf("expected guarded value to be 42; got %d", got)
	}
	g.Unlock()

	// The mutex must be re-lockable once released.
	g = m.Lock()
	*g.Get() = 7
	g.Unlock()

	g = m.Lock()
	if got := *g.Get(); got != 7 {
		t.Errorf("expected guarded value to be 7 after update; got %d", got)
	}
	g.Unlock()
}

func TestMutexSelfReentrancyPanics(t *testing.T) {
	defer func(orig func()) { yieldFn = orig }(yieldFn)
	yieldFn = runtime.Gosched
	defer withFakeCPU(0)()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected re-entrant Lock on the same CPU to panic")
		}
	}()

	m := NewMutex(0)
	m.Lock()
	m.Lock() // same CPU id; must panic
}

func TestMutexLockedByDifferentCPUDoesNotPanic(t *testing.T) {
	defer func(orig func()) { yieldFn = orig }(yieldFn)
	yieldFn = runtime.Gosched

	orig := currentCPUFn
	defer func() { currentCPUFn = orig }()

	cpu0 := &fakeCPU{id: 0}
	cpu1 := &fakeCPU{id: 1}
	active := cpu0
	currentCPUFn = func() pinnedCPU { return active }

	m := NewMutex(0)
	g := m.Lock()

	active = cpu1
	g2 := m.Lock()

	g2.Unlock()
	g.Unlock()
}

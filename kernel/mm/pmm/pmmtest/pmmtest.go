// Package pmmtest provides host-only test helpers for kernel/mm/pmm. The
// physical memory allocator normally reads and writes through a direct map
// of real physical RAM (see pmm's physToDirectMap); on a hosted test run
// there is no such mapping, so this package hands out an anonymous mmap
// region instead, backed by golang.org/x/sys/unix.Mmap rather than a plain
// []byte, since the allocator treats the region as raw addressable memory
// reached through a pointer, not as a Go slice it owns.
package pmmtest

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// BackingMemory is an mmap'd region standing in for a range of physical
// memory during a test.
type BackingMemory struct {
	data []byte
	base uintptr
}

// NewBackingMemory mmaps an anonymous, zero-filled region of size bytes and
// returns it as a BackingMemory. Callers must call Close once done.
func NewBackingMemory(size int) (*BackingMemory, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("pmmtest: mmap %d bytes: %w", size, err)
	}
	return &BackingMemory{data: data, base: uintptr(unsafe.Pointer(&data[0]))}, nil
}

// Close unmaps the backing region. The BackingMemory must not be used
// afterwards.
func (b *BackingMemory) Close() error {
	return unix.Munmap(b.data)
}

// DirectMapFn returns a function with the same signature as pmm's
// physToDirectMap, mapping a "physical address" in [0, len(b.data)) to the
// corresponding address inside this mmap'd region. Physical addresses used
// in a test must stay within that range.
func (b *BackingMemory) DirectMapFn() func(phys uintptr) uintptr {
	return func(phys uintptr) uintptr {
		return b.base + phys
	}
}

// Len returns the size, in bytes, of the backing region.
func (b *BackingMemory) Len() int {
	return len(b.data)
}

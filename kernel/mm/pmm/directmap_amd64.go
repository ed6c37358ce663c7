package pmm

import "unsafe"

// directMapBase is the virtual address at which the vmm package linearly
// maps the whole of physical memory (see kernelBase in
// kernel/mm/vmm/vmm_constants_amd64.go). It is duplicated here, rather than
// imported, because the physical memory allocator must be usable before any
// vmm.AddressSpace exists: the direct map is set up by the very early boot
// code that also builds the initial kernel address space, and both that code
// and this package need to agree on where it lives.
const directMapBase = uintptr(0xFFFF800000000000)

// physToDirectMap is a package var, not a plain function, so host-side tests
// (see kernel/mm/pmm/pmmtest) can point it at real OS-backed memory obtained
// via mmap instead of the kernel's own direct-mapped physical address range,
// which is only valid once the kernel's own page tables are live.
var physToDirectMap = func(phys uintptr) uintptr {
	return phys + directMapBase
}

// unsafeUint64Slice reinterprets the wordCount uint64 words starting at addr
// as a Go slice, letting the bitmap live directly in the physical frames
// reserved for it instead of in a heap-allocated buffer (the allocator that
// backs the heap is the very thing being bootstrapped here).
func unsafeUint64Slice(addr uintptr, wordCount int) []uint64 {
	return unsafe.Slice((*uint64)(unsafe.Pointer(addr)), wordCount)
}

package vmm

import (
	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/mm"
)

// earlyReserveLastUsed tracks the last reserved virtual address and is
// decreased after each allocation request. It starts right below the
// non-moving kernel L3 range, so early reservations and the kernel image
// never collide.
var earlyReserveLastUsed = kernelBase | (kernelL3NonMovingStart << pageLevelShifts[1])

var errEarlyReserveNoSpace = &kernel.Error{Module: "early_reserve", Message: "remaining kernel virtual address space not large enough to satisfy reservation request"}

// EarlyReserveRegion reserves a page-aligned contiguous range of kernel
// virtual addresses of the requested size and returns its start address. If
// size is not a multiple of the system page size it is rounded up.
//
// This is meant for drivers that need to map a fixed physical resource (an
// MMIO range, a linear framebuffer) into the kernel's own address space
// during early boot, before a general-purpose kernel virtual memory
// allocator exists.
func EarlyReserveRegion(size uintptr) (uintptr, *kernel.Error) {
	size = (size + (mm.PageSize - 1)) &^ (mm.PageSize - 1)

	if size > earlyReserveLastUsed-kernelBase {
		return 0, errEarlyReserveNoSpace
	}

	earlyReserveLastUsed -= size
	return earlyReserveLastUsed, nil
}

// MapPhysicalRegion reserves a fresh range of kernel virtual addresses and
// maps it to the physical region [phys, phys+size) in the kernel address
// space, returning the virtual address the region starts at. It is the
// collaborator entry point video console drivers use to reach their
// framebuffer.
func MapPhysicalRegion(phys, size uintptr, flags PageTableEntryFlag) (uintptr, *kernel.Error) {
	size = (size + (mm.PageSize - 1)) &^ (mm.PageSize - 1)

	virt, err := EarlyReserveRegion(size)
	if err != nil {
		return 0, err
	}

	if err := KernelSpace().Map(&MapEntry{
		VirtualAddress:  virt,
		PhysicalAddress: phys &^ (mm.PageSize - 1),
		Size:            size,
		Flags:           flags,
	}); err != nil {
		return 0, err
	}

	return virt + (phys & (mm.PageSize - 1)), nil
}

package pmm

import (
	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/kfmt/early"
	"github.com/Amjad50/OS/kernel/mm"
	"github.com/Amjad50/OS/multiboot"
)

var errBootAllocOutOfMemory = &kernel.Error{Module: "boot_mem_alloc", Message: "out of memory"}

// BootMemAllocator implements a rudimentary physical memory allocator used to
// bootstrap the kernel. It scans the memory region information provided by
// the bootloader to find free frames and tracks allocations via a single
// monotonically increasing counter; it cannot free frames. Once the kernel is
// fully initialized, allocations are handed over to BitmapAllocator which
// does support freeing.
type BootMemAllocator struct {
	allocCount     uint64
	lastAllocFrame mm.Frame

	kernelStartAddr, kernelEndAddr   uintptr
	kernelStartFrame, kernelEndFrame mm.Frame
}

// init sets up the boot memory allocator's internal state.
func (alloc *BootMemAllocator) init(kernelStart, kernelEnd uintptr) {
	pageSizeMinus1 := mm.PageSize - 1
	alloc.kernelStartAddr = kernelStart
	alloc.kernelEndAddr = kernelEnd
	alloc.kernelStartFrame = mm.Frame((kernelStart & ^pageSizeMinus1) >> mm.PageShift)
	alloc.kernelEndFrame = mm.Frame(((kernelEnd+pageSizeMinus1) & ^pageSizeMinus1)>>mm.PageShift) - 1
}

// AllocFrame scans the system memory regions reported by the bootloader and
// reserves the next available free frame, skipping over the kernel image.
func (alloc *BootMemAllocator) AllocFrame() (mm.Frame, *kernel.Error) {
	err := errBootAllocOutOfMemory

	multiboot.VisitMemRegions(func(region *multiboot.MemoryMapEntry) bool {
		if region.Type != multiboot.MemAvailable || region.Length < uint64(mm.PageSize) {
			return true
		}

		pageSizeMinus1 := uint64(mm.PageSize - 1)
		regionStartFrame := mm.Frame(((region.PhysAddress + pageSizeMinus1) & ^pageSizeMinus1) >> mm.PageShift)
		regionEndFrame := mm.Frame(((region.PhysAddress+region.Length) & ^pageSizeMinus1)>>mm.PageShift) - 1

		if alloc.lastAllocFrame >= regionEndFrame {
			return true
		}

		switch {
		case (alloc.lastAllocFrame <= regionStartFrame && alloc.kernelStartFrame == regionStartFrame) ||
			(alloc.lastAllocFrame <= regionEndFrame && alloc.lastAllocFrame+1 == alloc.kernelStartFrame):
			alloc.lastAllocFrame = alloc.kernelEndFrame + 1
		case alloc.lastAllocFrame < regionStartFrame || alloc.allocCount == 0:
			alloc.lastAllocFrame = regionStartFrame
		default:
			alloc.lastAllocFrame++
		}

		if alloc.lastAllocFrame > regionEndFrame {
			return true
		}

		err = nil
		return false
	})

	if err != nil {
		return mm.InvalidFrame, errBootAllocOutOfMemory
	}

	alloc.allocCount++
	return alloc.lastAllocFrame, nil
}

// printMemoryMap dumps the bootloader-reported memory regions and the
// location of the kernel image using the early (pre-console) print sink.
func (alloc *BootMemAllocator) printMemoryMap() {
	early.Printf("[boot_mem_alloc] system memory map:\n")
	var totalFree uint64
	multiboot.VisitMemRegions(func(region *multiboot.MemoryMapEntry) bool {
		early.Printf("\t[0x%10x - 0x%10x], size: %10d, type: %s\n", region.PhysAddress, region.PhysAddress+region.Length, region.Length, region.Type.String())
		if region.Type == multiboot.MemAvailable {
			totalFree += region.Length
		}
		return true
	})
	early.Printf("[boot_mem_alloc] available memory: %dKb\n", totalFree/1024)
	early.Printf("[boot_mem_alloc] kernel loaded at 0x%x - 0x%x\n", alloc.kernelStartAddr, alloc.kernelEndAddr)
	early.Printf("[boot_mem_alloc] size: %d bytes, reserved pages: %d\n",
		uint64(alloc.kernelEndAddr-alloc.kernelStartAddr),
		uint64(alloc.kernelEndFrame-alloc.kernelStartFrame+1),
	)
}

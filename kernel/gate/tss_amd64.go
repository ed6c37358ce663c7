package gate

import (
	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/mm"
	"github.com/Amjad50/OS/kernel/mm/vmm"
)

// istEntryCount is the number of Interrupt Stack Table slots a TSS provides.
const istEntryCount = 7

// istStackTops holds the top-of-stack address for each IST slot, indexed the
// same way as the istOffset argument to HandleInterrupt (1-based; index 0 is
// unused since an istOffset of 0 means "don't switch stacks"). Populated by
// AllocateISTStacks and read by installIDT when building each gate
// descriptor.
var istStackTops [istEntryCount + 1]uintptr

var (
	earlyReserveRegionFn = vmm.EarlyReserveRegion
	mapKernelRegionFn    = func(entry *vmm.MapEntry) *kernel.Error { return vmm.KernelSpace().Map(entry) }
)

// AllocateISTStacks reserves and maps one stack per IST slot in the kernel
// address space. Each slot gets two pages of virtual address space but only
// the upper page is mapped; the lower page is left unmapped as a guard so a
// handler that overflows its stack faults immediately instead of silently
// corrupting the adjacent stack. Must be called exactly once, after the
// kernel address space exists and before Init installs the IDT.
func AllocateISTStacks() *kernel.Error {
	for i := 0; i < istEntryCount; i++ {
		region, err := earlyReserveRegionFn(2 * mm.PageSize)
		if err != nil {
			return err
		}

		stackPage := region + mm.PageSize
		if err := mapKernelRegionFn(&vmm.MapEntry{
			VirtualAddress: stackPage,
			Size:           mm.PageSize,
			Flags:          vmm.FlagRW | vmm.FlagGlobal,
		}); err != nil {
			return err
		}

		// the stack grows down from the top of the mapped page.
		istStackTops[i+1] = stackPage + mm.PageSize
	}

	return nil
}

// ISTStackTop returns the top-of-stack address allocated for the given
// 1-based IST offset, or 0 if offset is 0 or AllocateISTStacks has not run.
func ISTStackTop(offset uint8) uintptr {
	if offset == 0 || int(offset) >= len(istStackTops) {
		return 0
	}
	return istStackTops[offset]
}

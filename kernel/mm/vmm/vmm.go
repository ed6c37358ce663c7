package vmm

import "github.com/Amjad50/OS/kernel"

// Init creates the kernel's top-level address space, switches the CPU to it
// and installs the paging-related exception handlers. It must run after
// pmm.Init (a frame allocator must already be registered with mm) and before
// gate.Init, which allocates its IST stacks in the kernel address space
// created here.
func Init() *kernel.Error {
	as, err := NewKernelAddressSpace()
	if err != nil {
		return err
	}

	as.SwitchToThis()
	installFaultHandlers()

	return nil
}

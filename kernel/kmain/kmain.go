// Package kmain wires together the collaborator packages (physical and
// virtual memory, the GDT/TSS, the device registry) into the single Go
// symbol the rt0 assembly stub calls into once it has set up a minimal
// g0 and a 4K stack.
package kmain

import (
	"github.com/Amjad50/OS/device"
	"github.com/Amjad50/OS/device/devicefs"
	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/gate"
	"github.com/Amjad50/OS/kernel/hal"
	"github.com/Amjad50/OS/kernel/kfmt"
	"github.com/Amjad50/OS/kernel/mm/pmm"
	"github.com/Amjad50/OS/kernel/mm/vmm"
	"github.com/Amjad50/OS/multiboot"
)

const devicesMountPoint = "/devices"

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// Kmain is the only Go symbol visible (exported) to the rt0 initialization
// code. It is invoked with the physical address of the multiboot info
// payload provided by the bootloader and the physical start/end addresses of
// the loaded kernel image.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the
// CPU.
//
//go:noinline
func Kmain(multibootInfoPtr, kernelStart, kernelEnd uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	hal.DetectHardware()
	kfmt.Printf("Starting gopheros-core\n")

	var err *kernel.Error
	if err = pmm.Init(kernelStart, kernelEnd); err != nil {
		kfmt.Panic(err)
	} else if err = vmm.Init(); err != nil {
		kfmt.Panic(err)
	} else if err = gate.Init(); err != nil {
		kfmt.Panic(err)
	}

	// devicesFS exposes every device registered by the drivers that
	// hal.DetectHardware just probed through the fs.FileSystem interface;
	// nothing mounts it onto a path yet since this kernel has no VFS
	// mount table (out of scope), but constructing it here mirrors the
	// way the real boot sequence would hand it to one.
	_ = devicefs.New()
	kfmt.Printf("[kmain] %s: %d device(s) registered\n", devicesMountPoint, len(device.DeviceNames()))

	// Use kfmt.Panic instead of panic so the compiler cannot eliminate
	// this call as dead code.
	kfmt.Panic(errKmainReturned)
}

package vmm

import (
	"github.com/Amjad50/OS/kernel/cpu"
	"github.com/Amjad50/OS/kernel/gate"
	"github.com/Amjad50/OS/kernel/kfmt"
	"golang.org/x/arch/x86/x86asm"
	"unsafe"
)

// pageFaultErrorCode mirrors the bit layout the CPU pushes onto the stack
// alongside a page fault: bit 0 distinguishes a protection violation from a
// not-present page, bit 1 distinguishes a write from a read, bit 2
// distinguishes user-mode from kernel-mode access and bit 4 flags an
// instruction fetch.
type pageFaultErrorCode uint64

const (
	pfPresent pageFaultErrorCode = 1 << iota
	pfWrite
	pfUser
	_
	pfInstructionFetch
)

// handlePageFault is installed as the Registers-based handler for
// gate.PageFaultException. There is no demand-paging or copy-on-write
// recovery path: every mapping this kernel creates is either already backed
// by a frame or not present at all, so any fault reaching this handler is
// unrecoverable and the kernel panics after dumping as much context as it
// can gather.
func handlePageFault(regs *gate.Registers) {
	faultAddr := cpu.ReadCR2()
	errCode := pageFaultErrorCode(regs.Info)

	kfmt.Printf("\nunrecoverable page fault\n")
	kfmt.Printf("fault address: 0x%x\n", faultAddr)
	kfmt.Printf("present: %t, write: %t, user-mode: %t, instruction-fetch: %t\n",
		errCode&pfPresent != 0,
		errCode&pfWrite != 0,
		errCode&pfUser != 0,
		errCode&pfInstructionFetch != 0,
	)

	dumpFaultContext(regs)
	panic("page fault")
}

// dumpFaultContext prints the register snapshot and, best-effort, the
// machine instruction at the faulting RIP, disassembled via x86asm. The
// disassembly is informational only: it helps a developer reading a panic
// trace see what instruction actually triggered the fault without reaching
// for an external disassembler.
func dumpFaultContext(regs *gate.Registers) {
	regs.DumpTo(kfmt.GetOutputSink())

	code := (*[x86asm.MaxInstBytes]byte)(unsafe.Pointer(uintptr(regs.RIP)))
	inst, err := x86asm.Decode(code[:], 64)
	if err != nil {
		kfmt.Printf("could not disassemble faulting instruction: %s\n", err.Error())
		return
	}

	kfmt.Printf("faulting instruction: %s\n", x86asm.GNUSyntax(inst, regs.RIP, nil))
}

// installFaultHandlers registers the page fault handler. It is called once,
// from Init, which runs before gate.Init loads the IDT.
func installFaultHandlers() {
	gate.HandleInterrupt(gate.PageFaultException, 0, handlePageFault)
}

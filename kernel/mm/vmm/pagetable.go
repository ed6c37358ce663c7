package vmm

import (
	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/mm"
	"unsafe"
)

// pageTable is the generic structure shared by every paging level (PML4,
// PDPT, PD and PT): 512 64-bit entries occupying exactly one physical frame.
type pageTable struct {
	entries [512]pageTableEntry
}

// pageTableRef is a physical frame that backs a pageTable, accessed through
// the direct-map region rather than through any recursive self-mapping
// trick: since every physical address is always reachable at
// physicalToVirtual(addr), a pageTable's contents can be read or written
// regardless of whether its owning AddressSpace is the active one.
type pageTableRef mm.Frame

// newPageTable allocates and zeroes a fresh physical frame to hold a page
// table at any level.
func newPageTable() (pageTableRef, *kernel.Error) {
	frame, err := mm.AllocFrame()
	if err != nil {
		return 0, err
	}
	ref := pageTableRef(frame)
	kernel.Memset(ref.virtualAddr(), 0, mm.PageSize)
	return ref, nil
}

func pageTableRefFromEntry(pte pageTableEntry) pageTableRef {
	return pageTableRef(pte.Frame())
}

func (ref pageTableRef) frame() mm.Frame { return mm.Frame(ref) }

func (ref pageTableRef) virtualAddr() uintptr {
	return physicalToVirtual(mm.Frame(ref).Address())
}

func (ref pageTableRef) table() *pageTable {
	return (*pageTable)(unsafe.Pointer(ref.virtualAddr()))
}

func (ref pageTableRef) free() {
	mm.FreeFrame(mm.Frame(ref))
}

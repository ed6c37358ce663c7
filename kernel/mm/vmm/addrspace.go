package vmm

import (
	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/cpu"
	"github.com/Amjad50/OS/kernel/mm"
)

var (
	// ErrInvalidMapping is returned when attempting to unmap, look up or
	// translate a virtual address that has no active mapping.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "address not mapped"}

	errInvalidMappingSize = &kernel.Error{Module: "vmm", Message: "mapping size is not a multiple of the page size"}
	errAlreadyMapped       = &kernel.Error{Module: "vmm", Message: "address is already mapped"}
	errNoHugePageSupport   = &kernel.Error{Module: "vmm", Message: "huge pages are not supported"}

	switchPDTFn      = cpu.SwitchPDT
	flushTLBEntryFn  = cpu.FlushTLBEntry

	kernelSpace *AddressSpace
)

// MapEntry describes a single virtual memory mapping request handed to
// AddressSpace.Map or AddressSpace.Unmap.
type MapEntry struct {
	// VirtualAddress is the first virtual address of the region. It must
	// be page-aligned.
	VirtualAddress uintptr

	// PhysicalAddress pins the mapping to a specific physical frame,
	// rounded down to the nearest page boundary. It is used for
	// memory-mapped I/O and framebuffer mappings. When zero, Map
	// allocates a fresh frame for every page spanned by the region.
	PhysicalAddress uintptr

	// Size is the length of the region in bytes. It must be a multiple
	// of mm.PageSize.
	Size uintptr

	// Flags lists the PageTableEntryFlag bits applied to every page
	// table entry created by this mapping.
	Flags PageTableEntryFlag
}

func (e *MapEntry) pageCount() uintptr { return e.Size / mm.PageSize }

// AddressSpace is a single page table hierarchy: the 4-level PML4/PDPT/PD/PT
// structure the MMU walks to translate a virtual address. Every process owns
// exactly one AddressSpace; a single additional AddressSpace, created by
// NewKernelAddressSpace, backs the kernel itself before any process exists.
type AddressSpace struct {
	pml4   pageTableRef
	isUser bool
}

// NewKernelAddressSpace allocates the top-level kernel address space. It must
// be called exactly once, early during boot, before any per-process address
// space is created via CloneKernelMem.
func NewKernelAddressSpace() (*AddressSpace, *kernel.Error) {
	pml4, err := newPageTable()
	if err != nil {
		return nil, err
	}

	as := &AddressSpace{pml4: pml4}
	kernelSpace = as
	return as, nil
}

// KernelSpace returns the AddressSpace created by NewKernelAddressSpace, or
// nil if it has not run yet.
func KernelSpace() *AddressSpace {
	return kernelSpace
}

// entryFlagsForLevel returns the flags applied to an intermediate (non-leaf)
// page table entry created while walking down to satisfy a mapping request.
// Every intermediate entry is left writable and, for user address spaces,
// user-accessible; the leaf entry installed by the caller carries the actual
// protection flags requested by MapEntry.Flags.
func (as *AddressSpace) entryFlagsForLevel() PageTableEntryFlag {
	flags := FlagPresent | FlagRW
	if as.isUser {
		flags |= FlagUserAccessible
	}
	return flags
}

// walk descends the page table hierarchy for virt, invoking visit once per
// level with the entry at that level. If create is true, missing
// intermediate tables are allocated and cleared as needed; otherwise walk
// stops and returns ok=false as soon as it meets a non-present entry above
// the leaf level.
func (as *AddressSpace) walk(virt uintptr, create bool) (pte *pageTableEntry, ok bool, err *kernel.Error) {
	indices := [pageLevels]uintptr{getL4(virt), getL3(virt), getL2(virt), getL1(virt)}

	table := as.pml4.table()
	for level := 0; level < pageLevels-1; level++ {
		entry := &table.entries[indices[level]]

		if !entry.HasFlags(FlagPresent) {
			if !create {
				return nil, false, nil
			}

			child, cerr := newPageTable()
			if cerr != nil {
				return nil, false, cerr
			}

			*entry = 0
			entry.SetFrame(child.frame())
			entry.SetFlags(as.entryFlagsForLevel())
		} else if entry.HasFlags(FlagHugePage) {
			// A huge entry at this level is itself the leaf for reads
			// (IsAddressMapped, Translate); there is no lower-level table
			// to keep descending into. Creating a mapping through a huge
			// entry is still unsupported.
			if !create {
				return entry, true, nil
			}
			return nil, false, errNoHugePageSupport
		}

		table = pageTableRefFromEntry(*entry).table()
	}

	return &table.entries[indices[pageLevels-1]], true, nil
}

// Map installs the mapping described by entry into the address space,
// allocating a physical frame per page when entry.PhysicalAddress is zero.
// It returns errAlreadyMapped if any page in the region already has an
// active mapping.
func (as *AddressSpace) Map(entry *MapEntry) *kernel.Error {
	if entry.Size == 0 || entry.Size%mm.PageSize != 0 {
		return errInvalidMappingSize
	}

	pageCount := entry.pageCount()
	for i := uintptr(0); i < pageCount; i++ {
		virt := entry.VirtualAddress + i*mm.PageSize

		var frame mm.Frame
		if entry.PhysicalAddress != 0 {
			frame = mm.FrameFromAddress(entry.PhysicalAddress + i*mm.PageSize)
		} else {
			var ferr *kernel.Error
			frame, ferr = mm.AllocFrame()
			if ferr != nil {
				return ferr
			}
		}

		pte, _, err := as.walk(virt, true)
		if err != nil {
			return err
		}

		if pte.HasFlags(FlagPresent) {
			return errAlreadyMapped
		}

		*pte = 0
		pte.SetFrame(frame)
		pte.SetFlags(entry.Flags | FlagPresent)

		if as == kernelSpace || as.isActive() {
			flushTLBEntryFn(virt)
		}
	}

	return nil
}

// Unmap tears down the mapping previously installed by Map. When
// freeFrames is true the backing physical frame for every unmapped page is
// released back to the physical memory allocator; callers that mapped a
// fixed PhysicalAddress (e.g. a framebuffer) must pass false since that
// frame is not owned by the allocator.
func (as *AddressSpace) Unmap(entry *MapEntry, freeFrames bool) *kernel.Error {
	pageCount := entry.pageCount()
	for i := uintptr(0); i < pageCount; i++ {
		virt := entry.VirtualAddress + i*mm.PageSize

		pte, ok, err := as.walk(virt, false)
		if err != nil {
			return err
		}
		if !ok || !pte.HasFlags(FlagPresent) {
			return ErrInvalidMapping
		}

		if freeFrames {
			mm.FreeFrame(pte.Frame())
		}

		*pte = 0

		if as == kernelSpace || as.isActive() {
			flushTLBEntryFn(virt)
		}
	}

	return nil
}

// IsAddressMapped returns true if virt currently resolves to a present page
// table entry in this address space.
func (as *AddressSpace) IsAddressMapped(virt uintptr) bool {
	pte, ok, _ := as.walk(virt, false)
	return ok && pte != nil && pte.HasFlags(FlagPresent)
}

// Translate returns the physical address virt currently maps to, or
// ErrInvalidMapping if virt has no active mapping.
func (as *AddressSpace) Translate(virt uintptr) (uintptr, *kernel.Error) {
	pte, ok, err := as.walk(virt, false)
	if err != nil {
		return 0, err
	}
	if !ok || !pte.HasFlags(FlagPresent) {
		return 0, ErrInvalidMapping
	}

	return pte.Frame().Address() + (virt & (mm.PageSize - 1)), nil
}

// CloneKernelMem creates a fresh per-process AddressSpace that shares the
// kernel's non-moving L3 mappings (the kernel image and the direct physical
// map) with the running kernel address space. Since kernelL4Index is the
// only L4 slot the kernel ever uses, sharing a single L4 entry is enough to
// give the new address space identical kernel mappings without copying a
// single page table below that level.
func (as *AddressSpace) CloneKernelMem() (*AddressSpace, *kernel.Error) {
	pml4, err := newPageTable()
	if err != nil {
		return nil, err
	}

	pml4.table().entries[kernelL4Index] = kernelSpace.pml4.table().entries[kernelL4Index]

	return &AddressSpace{pml4: pml4, isUser: true}, nil
}

// AddProcessSpecificMappings installs the per-process kernel-only mappings
// (e.g. the process's kernel stack) described by entries, which must all
// fall within the reserved kernelL3ProcessStart..kernelL3ProcessEnd L3 range
// inside kernelL4Index.
func (as *AddressSpace) AddProcessSpecificMappings(entries []*MapEntry) *kernel.Error {
	for _, entry := range entries {
		l3 := getL3(entry.VirtualAddress)
		if getL4(entry.VirtualAddress) != kernelL4Index || l3 < kernelL3ProcessStart || l3 > kernelL3ProcessEnd {
			return ErrInvalidMapping
		}

		if err := as.Map(entry); err != nil {
			return err
		}
	}

	return nil
}

// UnmapProcessMemory tears down every mapping that is private to this
// address space: the full user (non-kernel) L4 range plus the per-process
// kernel-only range described in the kernelL3ProcessStart..kernelL3ProcessEnd
// slots. It is called once, when a process exits, to reclaim its memory.
func (as *AddressSpace) UnmapProcessMemory() {
	table := as.pml4.table()

	for l4 := uintptr(0); l4 < numUserL4Indexes; l4++ {
		entry := &table.entries[l4]
		if entry.HasFlags(FlagPresent) {
			as.freeSubtree(pageTableRefFromEntry(*entry), 1)
			*entry = 0
		}
	}

	kernelEntry := &table.entries[kernelL4Index]
	if kernelEntry.HasFlags(FlagPresent) {
		l3table := pageTableRefFromEntry(*kernelEntry).table()
		for l3 := uintptr(kernelL3ProcessStart); l3 <= kernelL3ProcessEnd; l3++ {
			entry := &l3table.entries[l3]
			if entry.HasFlags(FlagPresent) {
				as.freeSubtree(pageTableRefFromEntry(*entry), 2)
				*entry = 0
			}
		}
	}

	as.pml4.free()
}

// freeSubtree recursively frees every page table below level (0-indexed,
// where 0 is the table directly below the PML4) without touching the leaf
// data frames themselves, since user memory is released explicitly by the
// caller before UnmapProcessMemory runs.
func (as *AddressSpace) freeSubtree(ref pageTableRef, level int) {
	if level >= pageLevels-1 {
		ref.free()
		return
	}

	table := ref.table()
	for i := range table.entries {
		entry := &table.entries[i]
		if entry.HasFlags(FlagPresent) && !entry.HasFlags(FlagHugePage) {
			as.freeSubtree(pageTableRefFromEntry(*entry), level+1)
		}
	}

	ref.free()
}

// isActive reports whether this address space is the one currently loaded
// into CR3 on the calling CPU.
func (as *AddressSpace) isActive() bool {
	return activeAddressSpace == as
}

var activeAddressSpace *AddressSpace

// SwitchToThis loads this address space's PML4 into CR3, making it the one
// the MMU walks for every subsequent memory access on the calling CPU.
func (as *AddressSpace) SwitchToThis() {
	switchPDTFn(as.pml4.frame().Address())
	activeAddressSpace = as
}

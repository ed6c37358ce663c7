package vmm

// This file is very specific to the 64-bit x86 architecture; porting the vmm
// package to another architecture requires replacing every constant here.

const (
	// pageLevels indicates the number of page levels supported by the amd64
	// architecture: PML4, PDPT, PD and PT.
	pageLevels = 4

	// ptePhysPageMask is a mask that allows us to extract the physical memory
	// address pointed to by a page table entry. For this particular
	// architecture, bits 12-51 contain the physical memory address.
	ptePhysPageMask = uintptr(0x000ffffffffff000)

	// kernelBase is the virtual address at which the whole of physical
	// memory is linearly mapped (the "direct map"). A physical address p is
	// always reachable at kernelBase+p regardless of which AddressSpace is
	// active, since the direct-map region lives in the non-moving kernel L3
	// slots that every address space shares.
	kernelBase = uintptr(0xFFFF800000000000)

	// kernelL4Index is the only L4 (PML4) slot ever used for kernel
	// mappings; every other slot is available to user address spaces.
	kernelL4Index = 0x1FF

	// kernelL3NonMovingStart is the first L3 index, within kernelL4Index,
	// reserved for the non-moving kernel image and direct-physical-map
	// region shared unchanged by every address space.
	kernelL3NonMovingStart = 0x1FE
	kernelL3NonMovingEnd   = 0x1FF

	// kernelL3ProcessStart/End bound the L3 range, within kernelL4Index,
	// used for per-process kernel-only mappings (e.g. the per-process
	// kernel stack) that must be replaced whenever an address space is
	// cloned or re-purposed for a new process.
	kernelL3ProcessStart = 0
	kernelL3ProcessEnd   = kernelL3NonMovingStart - 1

	// numUserL4Indexes is the number of L4 slots available to user address
	// spaces (every slot except kernelL4Index).
	numUserL4Indexes = kernelL4Index
)

// maxUserVirtualAddress is the highest virtual address a user mapping may
// occupy. It is derived, like the kernel range, from the canonical
// sign-extended address format amd64 requires: bits 48-63 must all equal bit
// 47, so any address below the kernel's reserved L4 slot must have its upper
// bits all zero and can use the entire remaining address space up to the
// slot boundary.
const maxUserVirtualAddress = uintptr(0x0000_7fff_ffff_ffff)

// pageLevelBits defines the number of virtual address bits that correspond
// to each page level. For the amd64 architecture each level uses 9 bits
// which amounts to 512 entries per level.
var pageLevelBits = [pageLevels]uint8{9, 9, 9, 9}

// pageLevelShifts defines the shift required to access each page table
// component of a virtual address.
var pageLevelShifts = [pageLevels]uint8{39, 30, 21, 12}

const (
	// FlagPresent is set when the page is available in memory and not
	// swapped out.
	FlagPresent PageTableEntryFlag = 1 << iota

	// FlagRW is set if the page can be written to.
	FlagRW

	// FlagUserAccessible is set if user-mode processes can access this
	// page. If not set only kernel code can access this page.
	FlagUserAccessible

	// FlagWriteThroughCaching implies write-through caching when set and
	// write-back caching if cleared.
	FlagWriteThroughCaching

	// FlagDoNotCache prevents this page from being cached if set.
	FlagDoNotCache

	// FlagAccessed is set by the CPU when this page is accessed.
	FlagAccessed

	// FlagDirty is set by the CPU when this page is modified.
	FlagDirty

	// FlagHugePage is set when using 2Mb pages instead of 4K pages.
	FlagHugePage

	// FlagGlobal, if set, prevents the TLB from flushing the cached memory
	// address for this page when swapping page tables by updating CR3.
	FlagGlobal

	// FlagNoExecute, if set, indicates that a page contains non-executable
	// code. This flag occupies the top bit of the entry (bit 63) so it
	// cannot be expressed via iota; see its explicit value below.
	_
)

// FlagNoExecute occupies bit 63 of the page table entry.
const FlagNoExecute PageTableEntryFlag = 1 << 63

// physicalToVirtual converts a physical memory address to its corresponding
// address in the direct-map region.
func physicalToVirtual(phys uintptr) uintptr { return phys + kernelBase }

// virtualToPhysical converts a direct-map virtual address back to the
// physical address it represents.
func virtualToPhysical(virt uintptr) uintptr { return virt - kernelBase }

func getL4(addr uintptr) uintptr { return (addr >> pageLevelShifts[0]) & 0x1FF }
func getL3(addr uintptr) uintptr { return (addr >> pageLevelShifts[1]) & 0x1FF }
func getL2(addr uintptr) uintptr { return (addr >> pageLevelShifts[2]) & 0x1FF }
func getL1(addr uintptr) uintptr { return (addr >> pageLevelShifts[3]) & 0x1FF }

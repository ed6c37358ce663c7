package pmm

import (
	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/mm"
	"github.com/Amjad50/OS/multiboot"
	"math/bits"
)

var errBitmapAllocOutOfMemory = &kernel.Error{Module: "bitmap_alloc", Message: "out of memory"}

// BitmapAllocator is the physical frame allocator used once the kernel has
// finished bootstrapping. Unlike BootMemAllocator it tracks every frame's
// free/used state in a bitmap (one bit per frame, set when free) and
// therefore supports freeing frames as well as allocating them.
//
// The bitmap itself is stored in frames obtained from the BootMemAllocator
// during init and is accessed through the direct physical map, so no
// dedicated virtual memory mapping is required to reach it.
type BitmapAllocator struct {
	bitmap    []uint64
	numFrames uint64

	// nextFreeWord is the index of the word most recently known to
	// contain a free bit. AllocFrame starts scanning there instead of
	// from the beginning of the bitmap every time.
	nextFreeWord uint64
}

// init builds the bitmap by marking every frame reported as available by the
// bootloader as free and then re-reserving every frame already handed out by
// the BootMemAllocator (the kernel image and anything allocated while it was
// in charge), since those frames are already in use.
func (alloc *BitmapAllocator) init() *kernel.Error {
	var highestFrame mm.Frame

	multiboot.VisitMemRegions(func(region *multiboot.MemoryMapEntry) bool {
		end := mm.FrameFromAddress(region.PhysAddress + region.Length)
		if end > highestFrame {
			highestFrame = end
		}
		return true
	})

	alloc.numFrames = uint64(highestFrame) + 1
	wordCount := (alloc.numFrames + 63) / 64

	bitmapFrames := (wordCount*8 + uint64(mm.PageSize) - 1) / uint64(mm.PageSize)
	firstFrame, err := bootMemAllocator.AllocFrame()
	if err != nil {
		return err
	}
	for i := uint64(1); i < bitmapFrames; i++ {
		if _, err := bootMemAllocator.AllocFrame(); err != nil {
			return err
		}
	}

	bitmapAddr := physToDirectMap(firstFrame.Address())
	alloc.bitmap = unsafeUint64Slice(bitmapAddr, int(wordCount))
	for i := range alloc.bitmap {
		alloc.bitmap[i] = 0
	}

	multiboot.VisitMemRegions(func(region *multiboot.MemoryMapEntry) bool {
		if region.Type != multiboot.MemAvailable {
			return true
		}

		start := mm.FrameFromAddress(region.PhysAddress)
		end := mm.FrameFromAddress(region.PhysAddress + region.Length)
		for f := start; f < end; f++ {
			alloc.markFree(f)
		}
		return true
	})

	// Every frame the BootMemAllocator handed out while it was in charge,
	// including the frames that now hold this very bitmap, must be
	// re-reserved; they are already in use. The kernel image is reserved
	// separately since the BootMemAllocator skips it rather than handing it
	// out.
	for f := mm.Frame(0); f <= bootMemAllocator.lastAllocFrame; f++ {
		alloc.markUsed(f)
	}
	if bootMemAllocator.kernelEndAddr > bootMemAllocator.kernelStartAddr {
		for f := bootMemAllocator.kernelStartFrame; f <= bootMemAllocator.kernelEndFrame && uint64(f) < alloc.numFrames; f++ {
			alloc.markUsed(f)
		}
	}

	return nil
}

func (alloc *BitmapAllocator) markFree(f mm.Frame) {
	alloc.bitmap[uint64(f)/64] |= 1 << (uint64(f) % 64)
}

func (alloc *BitmapAllocator) markUsed(f mm.Frame) {
	alloc.bitmap[uint64(f)/64] &^= 1 << (uint64(f) % 64)
}

// AllocFrame reserves and returns the first free frame found.
func (alloc *BitmapAllocator) AllocFrame() (mm.Frame, *kernel.Error) {
	wordCount := uint64(len(alloc.bitmap))
	for i := uint64(0); i < wordCount; i++ {
		word := alloc.nextFreeWord
		if alloc.bitmap[word] != 0 {
			bitIndex := bits.TrailingZeros64(alloc.bitmap[word])
			frame := mm.Frame(word*64 + uint64(bitIndex))
			alloc.markUsed(frame)
			return frame, nil
		}

		alloc.nextFreeWord++
		if alloc.nextFreeWord == wordCount {
			alloc.nextFreeWord = 0
		}
	}

	return mm.InvalidFrame, errBitmapAllocOutOfMemory
}

// FreeFrame releases a previously allocated frame back to the allocator.
func (alloc *BitmapAllocator) FreeFrame(f mm.Frame) {
	if uint64(f) >= alloc.numFrames {
		return
	}
	alloc.markFree(f)
}

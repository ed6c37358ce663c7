package pmm

import (
	"testing"

	"github.com/Amjad50/OS/kernel/mm"
	"github.com/Amjad50/OS/kernel/mm/pmm/pmmtest"
	"github.com/Amjad50/OS/multiboot"
)

func TestBitmapAllocatorInitAndAllocFree(t *testing.T) {
	backing, err := pmmtest.NewBackingMemory(int(mm.PageSize))
	if err != nil {
		t.Fatalf("NewBackingMemory: %v", err)
	}
	defer backing.Close()

	origDirectMap := physToDirectMap
	physToDirectMap = backing.DirectMapFn()
	defer func() { physToDirectMap = origDirectMap }()

	restore := multiboot.SetMemRegionsForTest([]multiboot.MemoryMapEntry{
		{PhysAddress: 0, Length: 0x100000, Type: multiboot.MemAvailable},
	})
	defer restore()

	var (
		bootAlloc   BootMemAllocator
		bitmapAlloc BitmapAllocator
	)
	bootAlloc.init(0x2000, 0x3000)

	origBoot, origBitmap := bootMemAllocator, bitmapAllocator
	bootMemAllocator, bitmapAllocator = bootAlloc, bitmapAlloc
	defer func() { bootMemAllocator, bitmapAllocator = origBoot, origBitmap }()

	if err := bitmapAllocator.init(); err != nil {
		t.Fatalf("BitmapAllocator.init: %v", err)
	}

	if bitmapAllocator.numFrames != 257 {
		t.Fatalf("expected numFrames == 257, got %d", bitmapAllocator.numFrames)
	}

	frame, ferr := bitmapAllocator.AllocFrame()
	if ferr != nil {
		t.Fatalf("AllocFrame: %v", ferr)
	}
	if frame == mm.InvalidFrame {
		t.Fatal("AllocFrame returned InvalidFrame")
	}

	// The frame backing the bitmap itself must already be marked used, so
	// AllocFrame must not return it again.
	if frame.Address() == 0 {
		t.Fatalf("AllocFrame returned the frame already reserved for the bitmap: %#x", frame.Address())
	}

	bitmapAllocator.FreeFrame(frame)
	frame2, ferr := bitmapAllocator.AllocFrame()
	if ferr != nil {
		t.Fatalf("AllocFrame after free: %v", ferr)
	}
	if frame2 != frame {
		t.Fatalf("expected freed frame %v to be reallocated first, got %v", frame, frame2)
	}
}

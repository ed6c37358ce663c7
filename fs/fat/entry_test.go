package fat

import "testing"

func TestDecodeFatEntryFat12(t *testing.T) {
	cases := []struct {
		raw   uint32
		state entryState
		next  uint32
	}{
		{0x000, entryFree, 0},
		{0x001, entryReserved, 0},
		{0x002, entryNext, 0x002},
		{0xFF6, entryNext, 0xFF6},
		{0xFF7, entryBad, 0},
		{0xFF8, entryEndOfChain, 0},
		{0xFFF, entryEndOfChain, 0},
	}

	for _, c := range cases {
		got := decodeFatEntry(Fat12, c.raw)
		if got.state != c.state {
			t.Errorf("raw=%#x: state = %v, want %v", c.raw, got.state, c.state)
		}
		if got.state == entryNext && got.next != c.next {
			t.Errorf("raw=%#x: next = %#x, want %#x", c.raw, got.next, c.next)
		}
	}
}

func TestDecodeFatEntryFat16(t *testing.T) {
	cases := []struct {
		raw   uint32
		state entryState
	}{
		{0x0000, entryFree},
		{0x0001, entryReserved},
		{0x0002, entryNext},
		{0xFFF6, entryNext},
		{0xFFF7, entryBad},
		{0xFFF8, entryEndOfChain},
		{0xFFFF, entryEndOfChain},
	}

	for _, c := range cases {
		got := decodeFatEntry(Fat16, c.raw)
		if got.state != c.state {
			t.Errorf("raw=%#x: state = %v, want %v", c.raw, got.state, c.state)
		}
	}
}

func TestDecodeFatEntryFat32(t *testing.T) {
	cases := []struct {
		raw   uint32
		state entryState
	}{
		{0x00000000, entryFree},
		{0x00000001, entryReserved},
		{0x00000002, entryNext},
		{0x0FFFFFF6, entryNext},
		{0x0FFFFFF7, entryBad},
		{0x0FFFFFF8, entryEndOfChain},
		{0x0FFFFFFF, entryEndOfChain},
	}

	for _, c := range cases {
		got := decodeFatEntry(Fat32, c.raw)
		if got.state != c.state {
			t.Errorf("raw=%#x: state = %v, want %v", c.raw, got.state, c.state)
		}
	}
}

// TestReadFatEntryFat12PackingOddEven covers the 12-bit packed encoding for
// both the even and odd cluster-index cases, which draw their nibble from
// opposite ends of the shared byte.
func TestReadFatEntryFat12PackingOddEven(t *testing.T) {
	// Three bytes encode two 12-bit entries: cluster 0 in the low 12 bits,
	// cluster 1 in the high 12 bits.
	fatBytes := []byte{0x34, 0x12, 0xAB}

	e0 := readFatEntry(Fat12, fatBytes, 0)
	if e0.state != entryNext || e0.next != 0x234 {
		t.Fatalf("cluster 0 = %+v, want next=0x234", e0)
	}

	e1 := readFatEntry(Fat12, fatBytes, 1)
	if e1.state != entryNext || e1.next != 0xAB1 {
		t.Fatalf("cluster 1 = %+v, want next=0xAB1", e1)
	}
}

func TestReadFatEntryFat16Packing(t *testing.T) {
	fatBytes := []byte{0x00, 0x00, 0x05, 0x00, 0xF8, 0xFF}
	if e := readFatEntry(Fat16, fatBytes, 1); e.state != entryNext || e.next != 5 {
		t.Fatalf("cluster 1 = %+v, want next=5", e)
	}
	if e := readFatEntry(Fat16, fatBytes, 2); e.state != entryEndOfChain {
		t.Fatalf("cluster 2 = %+v, want entryEndOfChain", e)
	}
}

func TestReadFatEntryFat32Packing(t *testing.T) {
	fatBytes := []byte{0x00, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0xF0}
	if e := readFatEntry(Fat32, fatBytes, 1); e.state != entryNext || e.next != 7 {
		t.Fatalf("cluster 1 = %+v, want next=7", e)
	}
}

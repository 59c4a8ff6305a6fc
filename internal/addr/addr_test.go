package addr

import "testing"

func TestRounding(t *testing.T) {
	p := PhysAddr(0x1001)
	if got := p.RoundDown(Kilopage); got != 0x1000 {
		t.Fatalf("RoundDown = %#x, want 0x1000", got)
	}
	if got := p.RoundUp(Kilopage); got != 0x2000 {
		t.Fatalf("RoundUp = %#x, want 0x2000", got)
	}
	if PhysAddr(0x1000).AlignedTo(Kilopage) != true {
		t.Fatal("0x1000 should be page-aligned")
	}
	if PhysAddr(0x1001).AlignedTo(Kilopage) != false {
		t.Fatal("0x1001 should not be page-aligned")
	}
}

func TestVirtAddrRounding(t *testing.T) {
	v := VirtAddr(0x3fff)
	if got := v.RoundUp(Megapage); got != Megapage {
		t.Fatalf("RoundUp = %#x, want %#x", got, uint64(Megapage))
	}
}

package buddy

import "testing"

// ramMemory is a Memory backed by a plain byte slice, standing in for
// the physmem direct-map window the freestanding kernel uses. addr 0
// corresponds to ram[0].
type ramMemory struct {
	ram []byte
}

func newRAM(size int) *ramMemory {
	return &ramMemory{ram: make([]byte, size)}
}

func (m *ramMemory) ReadLink(addr PhysAddr) PhysAddr {
	b := m.ram[addr : addr+8]
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return PhysAddr(v)
}

func (m *ramMemory) WriteLink(addr PhysAddr, next PhysAddr) {
	b := m.ram[addr : addr+8]
	v := uint64(next)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func TestAllocateDeallocateRoundtrip(t *testing.T) {
	mem := newRAM(16 * 1024 * 1024)
	a := New(mem)
	if _, err := a.AddRegion(0, 16*1024*1024); err != nil {
		t.Fatal(err)
	}
	total, free, allocated := a.Stats()
	if total != 16*1024*1024 || free != total || allocated != 0 {
		t.Fatalf("got total=%d free=%d allocated=%d", total, free, allocated)
	}

	blk, err := a.Allocate(0)
	if err != nil {
		t.Fatal(err)
	}
	if !blk.AlignedTo(PageSize) {
		t.Fatalf("block %#x not page-aligned", blk)
	}
	_, free, allocated = a.Stats()
	if free != total-PageSize || allocated != PageSize {
		t.Fatalf("after alloc: free=%d allocated=%d", free, allocated)
	}

	if err := a.Deallocate(blk, 0); err != nil {
		t.Fatal(err)
	}
	_, free, allocated = a.Stats()
	if free != total || allocated != 0 {
		t.Fatalf("after dealloc: free=%d allocated=%d, want roundtrip to total", free, allocated)
	}
}

func TestAllocateSplitsLargerBlock(t *testing.T) {
	mem := newRAM(1024 * 1024)
	a := New(mem)
	if _, err := a.AddRegion(0, 1024*1024); err != nil {
		t.Fatal(err)
	}
	// Order 0 is empty until something splits order 8 (1MiB == order 8: 4096<<8=1048576).
	blk, err := a.Allocate(0)
	if err != nil {
		t.Fatalf("Allocate(0) should split a larger block: %v", err)
	}
	if blk != 0 {
		t.Fatalf("expected first split to return the low half at 0, got %#x", blk)
	}
}

func TestAllocateNoMemory(t *testing.T) {
	mem := newRAM(PageSize)
	a := New(mem)
	if _, err := a.AddRegion(0, PageSize); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Allocate(0); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Allocate(0); err != NoMemoryAvailable {
		t.Fatalf("got %v, want NoMemoryAvailable", err)
	}
}

func TestAllocateOrderTooLarge(t *testing.T) {
	mem := newRAM(PageSize)
	a := New(mem)
	if _, err := a.Allocate(MaxOrder + 1); err != OrderTooLarge {
		t.Fatalf("got %v, want OrderTooLarge", err)
	}
}

func TestAddRegionTooSmall(t *testing.T) {
	mem := newRAM(PageSize)
	a := New(mem)
	if _, err := a.AddRegion(0, 10); err != RegionTooSmall {
		t.Fatalf("got %v, want RegionTooSmall", err)
	}
}

func TestAddRegionInvalid(t *testing.T) {
	mem := newRAM(PageSize)
	a := New(mem)
	if _, err := a.AddRegion(100, 10); err != InvalidRegion {
		t.Fatalf("got %v, want InvalidRegion", err)
	}
}

// TestBuddyCoalesce exercises the scenario where two buddies are
// deallocated and must merge back into their parent order, then split
// back out identically on the next allocation -- the allocator must
// not "leak" order bookkeeping across a split/coalesce/split cycle.
func TestBuddyCoalesce(t *testing.T) {
	mem := newRAM(2 * PageSize)
	a := New(mem)
	if _, err := a.AddRegion(0, 2*PageSize); err != nil {
		t.Fatal(err)
	}

	b0, err := a.Allocate(0)
	if err != nil {
		t.Fatal(err)
	}
	b1, err := a.Allocate(0)
	if err != nil {
		t.Fatal(err)
	}
	if b0 == b1 {
		t.Fatalf("two allocations returned the same block %#x", b0)
	}

	if err := a.Deallocate(b0, 0); err != nil {
		t.Fatal(err)
	}
	if err := a.Deallocate(b1, 0); err != nil {
		t.Fatal(err)
	}

	_, free, allocated := a.Stats()
	if free != 2*PageSize || allocated != 0 {
		t.Fatalf("after both freed: free=%d allocated=%d", free, allocated)
	}

	// The coalesced pair should now be allocatable as a single order-1 block.
	merged, err := a.Allocate(1)
	if err != nil {
		t.Fatalf("expected coalesced buddies to satisfy an order-1 allocation: %v", err)
	}
	if merged != 0 {
		t.Fatalf("got merged block at %#x, want 0", merged)
	}
}

func TestAllocateZeroPagesRejectsNegativeOrder(t *testing.T) {
	mem := newRAM(PageSize)
	a := New(mem)
	if _, err := a.Allocate(-1); err != AllocateZeroPages {
		t.Fatalf("got %v, want AllocateZeroPages", err)
	}
}

func TestDeallocateNullPointer(t *testing.T) {
	mem := newRAM(PageSize)
	a := New(mem)
	if err := a.Deallocate(NoAddr, 0); err != NullPointer {
		t.Fatalf("got %v, want NullPointer", err)
	}
}

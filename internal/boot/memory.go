package boot

import (
	"novos/asm"
	"novos/internal/addr"
	"novos/internal/buddy"
	"novos/internal/layout"
	"novos/internal/linksyms"
	"novos/internal/paging"
	"novos/internal/pmem"
)

// physMemory is the hardware seam the buddy allocator and pmem.Allocator
// read and write physical memory through. It never assumes paging is
// enabled: every access goes through layout.PhysToVirt, which is the
// identity conversion until the boot sequencer publishes the real
// offset in step 10, and the physmem-window offset afterward.
type physMemory struct{}

func (physMemory) ReadLink(p buddy.PhysAddr) buddy.PhysAddr {
	v := layout.PhysToVirt(addr.PhysAddr(p))
	return buddy.PhysAddr(linksyms.Read64(uint64(v)))
}

func (physMemory) WriteLink(p buddy.PhysAddr, next buddy.PhysAddr) {
	v := layout.PhysToVirt(addr.PhysAddr(p))
	linksyms.Write64(uint64(v), uint64(next))
}

// Zero fills size bytes starting at p with zero, one word at a time.
// size is always a whole number of pages in practice (pmem.ZAlloc's only
// caller), so no byte-granular tail is handled.
func (physMemory) Zero(p addr.PhysAddr, size uint64) {
	v := uint64(layout.PhysToVirt(p))
	for off := uint64(0); off < size; off += 8 {
		linksyms.Write64(v+off, 0)
	}
}

// pageTableStore is paging.TableStore backed by the kernel's own
// physical allocator: a table page is just a zeroed order-0 frame, and
// an entry within it is one 8-byte word reached through the same
// physmem window physMemory uses.
type pageTableStore struct {
	frames *pmem.Allocator
}

func (s pageTableStore) AllocTable() (addr.PhysAddr, error) {
	return s.frames.ZAlloc(0)
}

func (s pageTableStore) FreeTable(table addr.PhysAddr) error {
	return s.frames.Free(table, 0)
}

func (s pageTableStore) ReadEntry(table addr.PhysAddr, index int) paging.PTE {
	v := uint64(layout.PhysToVirt(table)) + uint64(index)*8
	return paging.PTE(linksyms.Read64(v))
}

func (s pageTableStore) WriteEntry(table addr.PhysAddr, index int, entry paging.PTE) {
	v := uint64(layout.PhysToVirt(table)) + uint64(index)*8
	linksyms.Write64(v, uint64(entry))
}

func (s pageTableStore) Fence(vaddr addr.VirtAddr) {
	asm.FenceVMA(uint64(vaddr))
}

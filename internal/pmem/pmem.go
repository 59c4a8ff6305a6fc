// Package pmem is the kernel's physical-memory facade: it turns the
// FDT's /memory nodes and reservation block into a buddy allocator over
// exactly the bytes that are actually free, and serializes access to
// that allocator across harts.
//
// pmem stays pure Go logic plus one injected seam (Memory), so the
// region-building arithmetic is exercised by go test on a host and by
// the freestanding kernel image identically; only the concrete Memory
// implementation wired up at boot time touches real physical memory.
package pmem

import (
	"errors"

	"novos/internal/addr"
	"novos/internal/buddy"
	"novos/internal/fdt"
	"novos/internal/rangeset"
	"novos/internal/spinlock"
)

// ErrNoMemoryNode is returned when the FDT has no usable /memory
// region at all.
var ErrNoMemoryNode = errors.New("pmem: no memory regions found in device tree")

// Memory is the hardware seam pmem needs beyond what buddy.Memory
// already provides: a way to zero a freshly allocated block for
// Allocator.ZAlloc. Implementations route both through the same
// physical-to-virtual direct map (the single translation hook, grounded
// on Biscuit's Physmem_t.Dmap).
type Memory interface {
	buddy.Memory
	Zero(addr addr.PhysAddr, size uint64)
}

// Reservation is a physical range pmem must exclude from the free
// pool before handing the rest to the buddy allocator: the firmware's
// own working memory, the loaded kernel image, and so on.
type Reservation struct {
	Start addr.PhysAddr
	End   addr.PhysAddr // inclusive
}

// BuildFreeRanges derives the set of physical byte ranges that are
// safe to hand to a buddy allocator: every /memory region in blob,
// minus every entry of blob's own memory-reservation block, minus the
// caller-supplied reservations (firmware scratch, the kernel image,
// the FDT blob's own location).
func BuildFreeRanges(blob *fdt.Blob, reserved []Reservation) (*rangeset.Set, error) {
	var set rangeset.Set
	found := false
	var walkErr error
	err := blob.MemoryRegions(func(base, size uint64) bool {
		if size == 0 {
			return true
		}
		found = true
		if e := set.Insert(base, base+size-1); e != nil {
			walkErr = e
			return false
		}
		return true
	})
	if err != nil {
		if _, ok := fdt.Lookup(blob, "/memory"); !ok {
			return nil, ErrNoMemoryNode
		}
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	if !found {
		return nil, ErrNoMemoryNode
	}

	var rsvErr error
	err = blob.Reservations(func(r fdt.Reservation) bool {
		if r.Size == 0 {
			return true
		}
		if e := set.Remove(r.Addr, r.Addr+r.Size-1); e != nil {
			rsvErr = e
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if rsvErr != nil {
		return nil, rsvErr
	}

	for _, r := range reserved {
		if err := set.Remove(uint64(r.Start), uint64(r.End)); err != nil {
			return nil, err
		}
	}
	return &set, nil
}

// Allocator is the single, hart-shared physical-page allocator. All of
// its methods are safe to call concurrently from any hart.
type Allocator struct {
	mu    spinlock.TicketLock
	mem   Memory
	buddy *buddy.Allocator
}

// New builds an Allocator by donating every range in free to a fresh
// buddy allocator backed by mem. It returns the total number of bytes
// successfully added.
func New(mem Memory, free *rangeset.Set) (*Allocator, uint64, error) {
	a := &Allocator{mem: mem, buddy: buddy.New(mem)}
	var total uint64
	var err error
	free.Each(func(r rangeset.Range) bool {
		added, e := a.buddy.AddRegion(buddy.PhysAddr(r.Start), buddy.PhysAddr(r.End+1))
		if e != nil {
			err = e
			return false
		}
		total += added
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	return a, total, nil
}

// Alloc returns one physical block of 4096<<order bytes, uninitialized.
func (a *Allocator) Alloc(order int) (addr.PhysAddr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, err := a.buddy.Allocate(order)
	if err != nil {
		return 0, err
	}
	return addr.PhysAddr(p), nil
}

// ZAlloc returns one physical block of 4096<<order bytes, zero-filled.
func (a *Allocator) ZAlloc(order int) (addr.PhysAddr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, err := a.buddy.Allocate(order)
	if err != nil {
		return 0, err
	}
	pa := addr.PhysAddr(p)
	a.mem.Zero(pa, buddy.PageSize<<uint(order))
	return pa, nil
}

// Free returns a block of the given order to the allocator.
func (a *Allocator) Free(block addr.PhysAddr, order int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buddy.Deallocate(buddy.PhysAddr(block), order)
}

// Stats reports total/free/allocated bytes under the allocator's lock.
func (a *Allocator) Stats() (total, free, allocated uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buddy.Stats()
}

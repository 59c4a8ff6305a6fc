// Package layout holds the kernel's fixed virtual-address-space
// constants: the higher-half base and the fixed-size slices carved out
// of it for the physmem window, per-hart stacks, and the dynamic
// allocator arena. These are compile-time constants, not configuration
// -- every build of the kernel uses the same higher-half map, the way
// Biscuit's dmap.go fixes VREC/VDIRECT/VEND/VUSER as constant PML4
// slot indices rather than something computed at boot.
package layout

import (
	"sync/atomic"

	"novos/internal/addr"
)

// HigherHalfStart is the base of the kernel's higher-half virtual
// mirror; every other fixed region in this package is an offset from
// it.
const HigherHalfStart addr.VirtAddr = 0x4000_0000_0000

// KernelPhysMemBase is the base of the physmem window: a 1:1-offset
// mapping of all physical RAM, built with megapages so one table entry
// covers 2 MiB of physical memory.
const KernelPhysMemBase addr.VirtAddr = HigherHalfStart + 0x0A00_0000_0000

// KernelStackBase is the base of the per-hart kernel stack region.
// Hart i's stack occupies [KernelStackBase+i*StackSize,
// KernelStackBase+(i+1)*StackSize).
const KernelStackBase addr.VirtAddr = HigherHalfStart + 0x0B00_0000_0000

// StackSize is the size reserved for each hart's kernel stack.
const StackSize = 1 << 20 // 1 MiB

// KernelVMemAllocBase is the base of the arena reserved for a
// virtual-memory allocator layered above the physical buddy allocator.
const KernelVMemAllocBase addr.VirtAddr = HigherHalfStart + 0x0C00_0000_0000

// KernelTrapStackBase is the base of the per-hart trap stack region,
// separate from a hart's ordinary kernel stack: the trap vector always
// switches onto this stack via Context.TrapStack before running any Go
// code, so a main-stack overflow still traps cleanly.
const KernelTrapStackBase addr.VirtAddr = HigherHalfStart + 0x0B80_0000_0000

// TrapStackSize is the size reserved for each hart's trap stack.
const TrapStackSize = 64 * 1024 // 64 KiB

// HartStack returns the base virtual address of hartID's kernel stack.
func HartStack(hartID uint64) addr.VirtAddr {
	return KernelStackBase.AddBytes(hartID * StackSize)
}

// HartTrapStack returns the base virtual address of hartID's trap stack.
func HartTrapStack(hartID uint64) addr.VirtAddr {
	return KernelTrapStackBase.AddBytes(hartID * TrapStackSize)
}

// PhysMemWindow returns the virtual address at which physical address
// p is mapped within the physmem window.
func PhysMemWindow(p addr.PhysAddr) addr.VirtAddr {
	return KernelPhysMemBase.AddBytes(uint64(p))
}

// physMemOffset is the process-wide physical-to-virtual conversion
// offset. It starts at zero (identity) and is published exactly once
// by the boot sequencer after the physmem window is mapped.
var physMemOffset uint64

// SetPhysMemOffset publishes offset as the active physical-to-virtual
// conversion. Called once, by the boot sequencer, after step 6 of
// before_main installs the physmem window's megapage mappings.
func SetPhysMemOffset(offset uint64) {
	atomic.StoreUint64(&physMemOffset, offset)
}

// PhysToVirt converts a physical address using whatever conversion is
// currently active: identity before SetPhysMemOffset runs, the
// published offset after.
func PhysToVirt(p addr.PhysAddr) addr.VirtAddr {
	off := atomic.LoadUint64(&physMemOffset)
	if off == 0 {
		return addr.VirtAddr(p)
	}
	return addr.VirtAddr(uint64(p) + off)
}

// Package boot is the kernel's boot sequencer: the code that runs after
// the assembly entry point hands off to Go and before the kernel has any
// virtual memory, any per-hart context, or a trap vector. Every other
// package in the tree is pure logic behind an injected seam; this
// package is where the seams get their real, hardware-backed
// implementations wired in.
package boot

import (
	"unsafe"

	"novos/asm"
	"novos/internal/addr"
	"novos/internal/fdt"
	"novos/internal/hart"
	"novos/internal/layout"
	"novos/internal/linksyms"
	"novos/internal/paging"
	"novos/internal/pmem"
	"novos/internal/sbi"
	"novos/internal/sbiconsole"
	"novos/internal/trap"
)

// legacyConsoleExtension is the SBI legacy console_putchar extension id.
const legacyConsoleExtension = 0x01

// allocator and table are the process-wide physical allocator and root
// page table, set up once by BeforeMain on the boot hart and read
// thereafter by every hart (the allocator and the table both serialise
// their own mutations, so sharing the pointers is safe).
var (
	allocator *pmem.Allocator
	table     *paging.Table

	// relocatedFDTPhys is the physical address relocateFDT copied the
	// device tree to, kept alongside currentBlob (its virtual-address
	// view) since HartArgs.FDT and fdtBytesAt both need the physical
	// form.
	relocatedFDTPhys addr.PhysAddr
)

// fdtBytesAt builds a byte slice over an FDT blob given only its
// physical address, by reading the big-endian totalsize field out of
// the header first. It goes through layout.PhysToVirt, so it works
// identically before paging (identity conversion) and after (the
// physmem window offset), which is what lets secondaryMain reuse it on
// the already-relocated blob.
func fdtBytesAt(physPtr uint64) []byte {
	v := uint64(layout.PhysToVirt(addr.PhysAddr(physPtr)))
	hdr := (*[8]byte)(unsafe.Pointer(uintptr(v)))
	totalSize := uint32(hdr[4])<<24 | uint32(hdr[5])<<16 | uint32(hdr[6])<<8 | uint32(hdr[7])
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(v))), totalSize)
}

// fatalEarly reports msg through the legacy SBI console -- klog is not
// installed yet, or its sink may itself be broken -- and halts. Used
// only for failures that occur before step 2 installs logging.
func fatalEarly(msg string) {
	sbiconsole.WriteString("panic (early boot): ")
	sbiconsole.WriteString(msg)
	sbiconsole.WriteString("\n")
	sbi.FailShutdown()
	for {
		asm.WaitForInterrupt()
	}
}

// BeforeMain is the Go-level boot sequencer, entered once, on the boot
// hart only, with supervisor interrupts already disabled and the BSS
// already zeroed by the entry path (see entry.go). It runs the full
// sequence described below and is never re-entered; secondary harts
// never call it and instead start directly in their own per-hart init
// (see secondary.go) once BeforeMain has published everything they
// need.
func BeforeMain(hartID uint64, fdtPtr uint64) {
	// Step 1: parse the FDT firmware handed off.
	blob, err := fdt.Parse(fdtBytesAt(fdtPtr))
	if err != nil {
		fatalEarly("bad device tree: " + err.Error())
	}

	// Step 2: if legacy console_putchar is available, it is the only
	// logger we have until the physmem window exists.
	if ok, _ := sbi.ProbeExtension(legacyConsoleExtension); ok {
		sbiconsole.WriteString("novos: boot hart starting\n")
	}

	// Step 3: physical-memory facade, over everything free minus the
	// kernel image and the original FDT blob.
	reserved := []pmem.Reservation{
		{Start: addr.PhysAddr(linksyms.Addr(linksyms.KernelStart)), End: addr.PhysAddr(linksyms.Addr(linksyms.KernelEnd))},
		{Start: addr.PhysAddr(fdtPtr), End: addr.PhysAddr(fdtPtr + uint64(len(blob.Bytes())) - 1)},
	}
	free, err := pmem.BuildFreeRanges(blob, reserved)
	if err != nil {
		fatalEarly("building free ranges: " + err.Error())
	}
	allocator, _, err = pmem.New(physMemory{}, free)
	if err != nil {
		fatalEarly("building physical allocator: " + err.Error())
	}

	// Step 4: kernel page table.
	table, err = paging.New(pagingMode, pageTableStore{frames: allocator})
	if err != nil {
		fatalEarly("creating page table: " + err.Error())
	}

	// Step 5: copy the FDT into allocator-owned memory. The original
	// blob's range stays among the step 3 reservations.
	blob = relocateFDT(blob)

	// Step 6: megapage-map every /memory region into the physmem window.
	if err := mapPhysicalMemory(table, blob); err != nil {
		fatalEarly("mapping physical memory: " + err.Error())
	}

	// Step 7: map every kernel ELF section over its own physical pages
	// (identity-mapped; see mapKernelSections).
	if err := mapKernelSections(table); err != nil {
		fatalEarly("mapping kernel sections: " + err.Error())
	}

	// Step 8: allocate and map this hart's stack and trap stack.
	if err := mapHartStack(table, hartID); err != nil {
		fatalEarly("mapping hart stack: " + err.Error())
	}
	if err := mapHartTrapStack(table, hartID); err != nil {
		fatalEarly("mapping hart trap stack: " + err.Error())
	}

	// Step 9: RISCV_RELATIVE relocations. A Go binary built for this
	// target is not position-independent the way the original kernel's
	// was -- the linker resolves every address against the final
	// link address up front, so there is nothing left to
	// relocate at this step. See DESIGN.md.
	applyRelocations()

	// Step 10: publish the physical-memory offset.
	layout.SetPhysMemOffset(uint64(layout.KernelPhysMemBase))

	// Steps 11-12: install satp, fence, switch SP onto the virtual
	// stack (copying the live stack across first), and jump to the
	// virtual-address continuation. asm.Trampoline performs the satp
	// write, the fence, the SP switch, and the jump as one sequence; it
	// never returns.
	currentHartID = hartID
	currentBlob = blob

	satp := buildSatp(table)
	newSP := migrateStack(hartID)
	asm.Trampoline(satp, newSP, afterTrampolineAddr())
}

// buildSatp assembles the address-translation CSR value for t: mode in
// the high bits, the root page's PPN in the low 44.
func buildSatp(t *paging.Table) uint64 {
	return uint64(pagingMode.CSRModeValue)<<60 | (uint64(t.Root()) >> 12)
}

// migrateStack copies the live boot stack, from the current stack
// pointer up to the linker's __stack_end, into hartID's newly-mapped
// virtual stack at the same offset from its top, and returns the new
// stack pointer the trampoline should switch onto.
func migrateStack(hartID uint64) uint64 {
	var marker byte
	oldSP := uint64(uintptr(unsafe.Pointer(&marker)))
	oldTop := linksyms.Addr(linksyms.StackEnd)
	used := oldTop - oldSP

	newTop := uint64(layout.HartStack(hartID)) + layout.StackSize
	newSP := newTop - used
	linksyms.CopyBytes(newSP, oldSP, used)
	return newSP
}

// afterTrampoline is the continuation the trampoline jumps to, inside
// the identity-mapped kernel image. It never returns: it finishes per-hart setup and, on the boot
// hart, brings up the rest of the machine before falling into the idle
// loop.
//
//go:nosplit
func afterTrampoline() {
	ctx := &hart.Context{
		ID:        currentHartID,
		BSPID:     currentHartID,
		TrapStack: uint64(layout.HartTrapStack(currentHartID)) + layout.TrapStackSize,
		FDT:       currentBlob,
	}
	hart.Install(ctx)
	trap.InstallVector()

	if ctx.IsBSP() {
		bringUpSecondaries(currentBlob, currentHartID)
	}

	for {
		asm.WaitForInterrupt()
	}
}

// currentHartID and currentBlob stash the values BeforeMain computed so
// afterTrampoline, reached only through the trampoline's raw jump (not
// a normal call with arguments), can recover them.
var (
	currentHartID uint64
	currentBlob   *fdt.Blob
)

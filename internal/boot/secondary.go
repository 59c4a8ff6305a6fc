package boot

import (
	"novos/asm"
	"novos/internal/addr"
	"novos/internal/fdt"
	"novos/internal/hart"
	"novos/internal/layout"
	"novos/internal/linksyms"
	"novos/internal/sbi"
	"novos/internal/sbiconsole"
	"novos/internal/trap"
)

// hartArgsSize is sizeof(HartArgs): four 8-byte fields.
const hartArgsSize = 32

// secondaryEntry is the raw assembly entry every secondary hart starts
// execution at (secondary_riscv64.s). It has no Go body: a0 holds the
// hart id and a1 the physical stack top, exactly as SBI HSM start
// delivers them, and neither follows Go's calling convention until the
// stub has installed paging and switched stacks.
func secondaryEntry()

// secondaryEntryAddr returns secondaryEntry's address, for passing to
// sbi.HartStart as the entry physical address.
func secondaryEntryAddr() uint64

// bringUpSecondaries starts every hart named in blob's /cpus node other
// than bootHartID (spec.md §4.8). Called once, by the boot hart, after
// it has finished its own per-hart setup.
func bringUpSecondaries(blob *fdt.Blob, bootHartID uint64) {
	satp := buildSatp(table)
	fdtAddr := uint64(relocatedFDTPhys)

	fdt.ForEachCPU(blob, func(cpu fdt.CPU) bool {
		if cpu.Reg == bootHartID {
			return true
		}
		startSecondary(cpu.Reg, bootHartID, satp, fdtAddr)
		return true
	})
}

// startSecondary allocates hartID a stack, stages a HartArgs record in
// its top sizeof(HartArgs) bytes, and asks SBI to start it there. A
// failed start is logged and the hart is simply left unused.
func startSecondary(hartID, bootHartID, satp, fdtAddr uint64) {
	virtBase := layout.HartStack(hartID)
	phys, allocated, err := allocAndMapStack(table, virtBase, layout.StackSize)
	if err != nil {
		sbiconsole.WriteString("novos: failed to map stack for secondary hart\n")
		return
	}
	physTop := uint64(phys) + allocated
	virtTop := uint64(virtBase) + allocated
	argsPhys := physTop - hartArgsSize

	// The record itself is written through the boot hart's physmem
	// window (paging is already active here); the target hart, which
	// has no page table yet, reads it back through the raw physical
	// address physTop-hartArgsSize instead.
	argsVirt := uint64(layout.PhysToVirt(addr.PhysAddr(argsPhys)))
	linksyms.Write64(argsVirt+0, satp)
	linksyms.Write64(argsVirt+8, virtTop)
	linksyms.Write64(argsVirt+16, bootHartID)
	linksyms.Write64(argsVirt+24, fdtAddr)

	if err := sbi.HartStart(hartID, secondaryEntryAddr(), physTop); err != nil {
		sbiconsole.WriteString("novos: SBI hart start failed\n")
	}
}

// secondaryMain is where secondaryEntry's assembly jumps to once paging
// is enabled and SP is on the hart's own virtual stack. hartID and
// bootHartID arrive in a0/a1 exactly as the assembly set them up;
// fdtAddr is the physical address of the (already-relocated) FDT, used
// only to build this hart's Context.
//
//go:nosplit
func secondaryMain(hartID, bootHartID, fdtAddr uint64) {
	blob, _ := fdt.Parse(fdtBytesAt(fdtAddr))
	ctx := &hart.Context{
		ID:        hartID,
		BSPID:     bootHartID,
		TrapStack: uint64(layout.HartTrapStack(hartID)) + layout.TrapStackSize,
		FDT:       blob,
	}
	hart.Install(ctx)
	trap.InstallVector()

	for {
		asm.WaitForInterrupt()
	}
}

// Package asm declares the small set of operations that cannot be
// expressed in Go: the SBI ecall trap, CSR access, TLB fences, and
// linker-symbol address getters. Each is implemented in hand-written
// riscv64 assembly in this package, following the same split the
// teacher repo uses for its ARM64 target (mazboot/asm): Go code
// everywhere it can be, assembly only at the instructions Go has no
// syntax for.
//
// This package builds only for riscv64; every other package that
// needs one of these primitives calls through here rather than
// embedding its own assembly. Unlike a generic "read CSR number N"
// entry point, each CSR gets its own named accessor: RISC-V's
// CSRRW/CSRRS/CSRRC instructions take the CSR number as an assembler
// immediate, not a register, so there is no way to parameterise it at
// runtime without one stub per register -- the same reason the
// linker-symbol getters below are one-per-symbol.
package asm

// Ecall executes the RISC-V `ecall` instruction, the single
// instruction SBI firmware calls and (from supervisor mode) traps to
// machine mode firmware. ext is placed in a7, fid in a6, and a0..a5
// hold up to six arguments; the two-word return value mirrors the SBI
// calling convention's (error, value) pair returned in (a0, a1).
func Ecall(ext, fid, a0, a1, a2, a3, a4, a5 int64) (int64, int64)

// ReadSatp reads the address-translation CSR (satp).
func ReadSatp() uint64

// WriteSatp writes the address-translation CSR (satp), installing a
// new page table and/or paging mode.
func WriteSatp(value uint64)

// WriteStvec writes the trap-vector base-address CSR.
func WriteStvec(value uint64)

// ReadSstatus reads the supervisor status CSR.
func ReadSstatus() uint64

// WriteSstatus writes the supervisor status CSR.
func WriteSstatus(value uint64)

// ReadSie reads the supervisor interrupt-enable CSR.
func ReadSie() uint64

// WriteSie writes the supervisor interrupt-enable CSR.
func WriteSie(value uint64)

// ReadSscratch reads the supervisor scratch CSR (the hart-local
// context pointer).
func ReadSscratch() uint64

// WriteSscratch writes the supervisor scratch CSR.
func WriteSscratch(value uint64)

// SwapSscratch atomically writes value into sscratch and returns its
// value immediately before the write. The trap vector prologue does
// not call it; it performs its own CSRRW exchange of SP and sscratch.
func SwapSscratch(value uint64) uint64

// ReadScause reads the trap cause CSR.
func ReadScause() uint64

// ReadStval reads the trap value CSR (faulting address or instruction).
func ReadStval() uint64

// ReadSepc reads the exception-PC CSR.
func ReadSepc() uint64

// WriteSepc writes the exception-PC CSR, selecting the instruction
// `sret` resumes at.
func WriteSepc(value uint64)

// FenceVMA executes `sfence.vma` for vaddr (0 selects the global
// "fence everything" form), invalidating any stale local TLB entry
// after a page-table mutation.
func FenceVMA(vaddr uint64)

// WaitForInterrupt executes `wfi`, parking the hart until the next
// interrupt, used by the idle loop once there is nothing left to run.
func WaitForInterrupt()

// GetKernelStart returns the linker-assigned address of __kernel_start.
func GetKernelStart() uint64

// GetTextStart returns the linker-assigned address of __text_start.
func GetTextStart() uint64

// GetTextEnd returns the linker-assigned address of __text_end.
func GetTextEnd() uint64

// GetRodataStart returns the linker-assigned address of __rodata_start.
func GetRodataStart() uint64

// GetRodataEnd returns the linker-assigned address of __rodata_end.
func GetRodataEnd() uint64

// GetDataStart returns the linker-assigned address of __data_start.
func GetDataStart() uint64

// GetDataEnd returns the linker-assigned address of __data_end.
func GetDataEnd() uint64

// GetBssStart returns the linker-assigned address of __bss_start.
func GetBssStart() uint64

// GetBssEnd returns the linker-assigned address of __bss_end.
func GetBssEnd() uint64

// GetTdataStart returns the linker-assigned address of __tdata_start.
func GetTdataStart() uint64

// GetTdataEnd returns the linker-assigned address of __tdata_end.
func GetTdataEnd() uint64

// GetStackStart returns the linker-assigned address of __stack_start.
func GetStackStart() uint64

// GetStackEnd returns the linker-assigned address of __stack_end,
// the top of the boot stack the firmware hands off on.
func GetStackEnd() uint64

// GetKernelEnd returns the linker-assigned address of __end, the byte
// immediately past every kernel section.
func GetKernelEnd() uint64

// Trampoline installs satp (enabling the kernel's own page table),
// fences the TLB globally, switches onto newSP, and jumps to entry --
// the single instruction sequence spec.md §4.7 step 12 describes as
// "an unconditional jump to the virtual entry". It never returns:
// translation is in force from the satp write on, so both Trampoline's
// own remaining instructions and entry must lie in pages the new table
// maps (the boot sequencer identity-maps the kernel image for this).
func Trampoline(satp, newSP, entry uint64)

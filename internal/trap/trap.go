// Package trap implements the supervisor trap contract: the frame
// layout the assembly vector saves registers into, the closed set of
// trap causes RISC-V defines, and the Go-level handler the vector
// calls after every register is safely on the trap stack.
//
// Exceptions have no handler to delegate to yet -- there is no user
// mode, no syscalls, nothing to page fault on purpose -- so every one
// of them is fatal. Interrupts are acknowledged or delegated to a
// hook; none of them unwind the hart.
package trap

import (
	"unsafe"

	"novos/asm"
	"novos/internal/hart"
	"novos/internal/klog"
	"novos/internal/sbi"
)

// Frame is the register save area the trap vector's prologue fills in
// before calling Handle, and restores from before `sret`. The ordering
// here must match the assembly prologue/epilogue exactly: GPRegs[0] is
// x1 (ra), since x0 is hardwired zero and never saved.
type Frame struct {
	GPRegs [31]uint64
	FPRegs [32]uint64
	FCSR   uint64
}

// Cause is the raw value of the scause CSR: the top bit distinguishes
// an interrupt from an exception, and the remaining bits are an
// implementation-defined (here, QEMU/standard RISC-V) cause code.
type Cause uint64

// IsInterrupt reports whether this cause is an interrupt rather than
// an exception.
func (c Cause) IsInterrupt() bool { return uint64(c)>>63 != 0 }

// Code returns the cause code with the interrupt bit stripped.
func (c Cause) Code() uint64 { return uint64(c) &^ (1 << 63) }

// Kind is the closed, named classification of every Cause this kernel
// recognizes. Anything outside this set decodes to KindUnknown rather
// than panicking the decoder itself.
type Kind int

const (
	KindUnknown Kind = iota

	ExcInstructionAddressMisaligned
	ExcInstructionAccessFault
	ExcIllegalInstruction
	ExcBreakpoint
	ExcLoadAddressMisaligned
	ExcLoadAccessFault
	ExcStoreAddressMisaligned
	ExcStoreAccessFault
	ExcEnvironmentCallFromU
	ExcEnvironmentCallFromS
	ExcEnvironmentCallFromM
	ExcInstructionPageFault
	ExcLoadPageFault
	ExcStorePageFault

	IntSupervisorSoftware
	IntSupervisorTimer
	IntSupervisorExternal
	IntMachineSoftware
	IntMachineTimer
	IntMachineExternal
)

// Decode classifies cause into a Kind.
func Decode(cause Cause) Kind {
	code := cause.Code()
	if cause.IsInterrupt() {
		switch code {
		case 1:
			return IntSupervisorSoftware
		case 3:
			return IntMachineSoftware
		case 5:
			return IntSupervisorTimer
		case 7:
			return IntMachineTimer
		case 9:
			return IntSupervisorExternal
		case 11:
			return IntMachineExternal
		default:
			return KindUnknown
		}
	}
	switch code {
	case 0:
		return ExcInstructionAddressMisaligned
	case 1:
		return ExcInstructionAccessFault
	case 2:
		return ExcIllegalInstruction
	case 3:
		return ExcBreakpoint
	case 4:
		return ExcLoadAddressMisaligned
	case 5:
		return ExcLoadAccessFault
	case 6:
		return ExcStoreAddressMisaligned
	case 7:
		return ExcStoreAccessFault
	case 8:
		return ExcEnvironmentCallFromU
	case 9:
		return ExcEnvironmentCallFromS
	case 11:
		return ExcEnvironmentCallFromM
	case 12:
		return ExcInstructionPageFault
	case 13:
		return ExcLoadPageFault
	case 15:
		return ExcStorePageFault
	default:
		return KindUnknown
	}
}

// TrapVector is the assembly entry point hardware jumps to on every
// supervisor trap; its body lives in trap_riscv64.s. It has no Go
// body because nothing about it follows Go's calling convention at
// entry.
func TrapVector()

// trapVectorAddr returns TrapVector's address for InstallVector to
// write into stvec.
func trapVectorAddr() uint64

// InstallVector points stvec at TrapVector in direct mode (the low
// two bits, selecting the mode, are naturally zero since every
// instruction address is a multiple of four). Called once per hart,
// after hart.Install.
func InstallVector() {
	asm.WriteStvec(trapVectorAddr())
}

// trapEntryGo is called by the assembly prologue once every register
// is safely saved and the hart has switched onto its trap stack. It
// takes no arguments and returns nothing: the frame it operates on is
// found through hart.Current().Scratch, and the new sepc it computes
// is written back through WriteSepc for the epilogue to pick up.
//
//go:nosplit
func trapEntryGo() {
	c := hart.Current()
	frame := (*Frame)(unsafe.Pointer(uintptr(c.Scratch)))
	cause := Cause(asm.ReadScause())
	tval := asm.ReadStval()
	sepc := asm.ReadSepc()
	asm.WriteSepc(Handle(frame, cause, tval, sepc))
}

// ExternalInterruptHook is called for every supervisor external
// interrupt. The interrupt controller driver that would feed it a
// real device dispatch is outside this core's scope; the default does
// nothing.
var ExternalInterruptHook = func() {}

// Handle is called by the assembly trap vector once frame, cause,
// tval and sepc are all in hand. It returns the PC execution should
// resume at -- ordinarily sepc unchanged, since nothing here yet
// handles a synchronous exception in a way that should skip past it.
func Handle(frame *Frame, cause Cause, tval uint64, sepc uint64) uint64 {
	if cause.IsInterrupt() {
		switch Decode(cause) {
		case IntSupervisorTimer:
			// Acknowledging the timer is a firmware timer-extension
			// concern, not wired in yet; the hart simply re-arms on
			// its own cadence. Hook point for when one is.
		case IntSupervisorExternal:
			ExternalInterruptHook()
		}
		return sepc
	}
	fatal(cause, tval, sepc)
	return sepc // unreachable: fatal never returns
}

// fatal reports an unhandled exception and halts the hart: the boot
// hart shuts the machine down, secondaries park themselves, since only
// the boot hart's shutdown call is meaningful to an operator watching
// the console.
func fatal(cause Cause, tval, sepc uint64) {
	klog.WriteString("panic: trap cause=")
	klog.WriteUint64(uint64(cause))
	klog.WriteString(" sepc=")
	klog.WriteHex64(sepc)
	klog.WriteString(" tval=")
	klog.WriteHex64(tval)
	klog.WriteString("\n")

	h, ok := hart.TryCurrent()
	if !ok || h.IsBSP() {
		sbi.FailShutdown()
	} else {
		sbi.HartStop()
	}
	for {
		asm.WaitForInterrupt()
	}
}

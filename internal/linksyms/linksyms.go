// Package linksyms is the boot sequencer's only way to learn where the
// linker placed each kernel section. There is no linker-script
// reflection API in Go; the address of each boundary symbol is
// fetched through a dedicated assembly getter (asm.GetXxx), the same
// one-stub-per-symbol shape the CSR accessors use and for the same
// reason -- `la symbol` is resolved at assemble time, not runtime.
//
// It also hosts the raw memory peek/poke helpers the boot sequencer
// needs while it is still manually walking page-table pages and
// copying the live stack, before any higher-level abstraction over
// physical memory exists.
package linksyms

import (
	"unsafe"

	"novos/asm"
)

// Symbol names the boot sequencer can ask for.
type Symbol int

const (
	KernelStart Symbol = iota
	TextStart
	TextEnd
	RodataStart
	RodataEnd
	DataStart
	DataEnd
	BssStart
	BssEnd
	TdataStart
	TdataEnd
	StackStart
	StackEnd
	KernelEnd
)

// Addr returns the linker-assigned address of sym.
func Addr(sym Symbol) uint64 {
	switch sym {
	case KernelStart:
		return asm.GetKernelStart()
	case TextStart:
		return asm.GetTextStart()
	case TextEnd:
		return asm.GetTextEnd()
	case RodataStart:
		return asm.GetRodataStart()
	case RodataEnd:
		return asm.GetRodataEnd()
	case DataStart:
		return asm.GetDataStart()
	case DataEnd:
		return asm.GetDataEnd()
	case BssStart:
		return asm.GetBssStart()
	case BssEnd:
		return asm.GetBssEnd()
	case TdataStart:
		return asm.GetTdataStart()
	case TdataEnd:
		return asm.GetTdataEnd()
	case StackStart:
		return asm.GetStackStart()
	case StackEnd:
		return asm.GetStackEnd()
	case KernelEnd:
		return asm.GetKernelEnd()
	default:
		return 0
	}
}

// Section is one mapped kernel section: a contiguous [Start, End)
// physical range with the permissions the boot sequencer's mapping
// step (spec.md §4.7 step 7) should install for it.
type Section struct {
	Name        string
	Start, End  uint64
	Readable    bool
	Writable    bool
	Executable  bool
}

// Sections returns every kernel section the boot sequencer must map,
// in link order.
func Sections() []Section {
	return []Section{
		{Name: "text", Start: Addr(TextStart), End: Addr(TextEnd), Readable: true, Executable: true},
		{Name: "rodata", Start: Addr(RodataStart), End: Addr(RodataEnd), Readable: true},
		{Name: "data", Start: Addr(DataStart), End: Addr(DataEnd), Readable: true, Writable: true},
		{Name: "tdata", Start: Addr(TdataStart), End: Addr(TdataEnd), Readable: true, Writable: true},
		{Name: "bss", Start: Addr(BssStart), End: Addr(BssEnd), Readable: true, Writable: true},
		{Name: "stack", Start: Addr(StackStart), End: Addr(StackEnd), Readable: true, Writable: true},
	}
}

// Read64 reads a 64-bit value from an arbitrary physical or virtual
// address, whichever addr currently means.
//
//go:nosplit
func Read64(addr uint64) uint64 {
	return *(*uint64)(unsafe.Pointer(uintptr(addr)))
}

// Write64 writes a 64-bit value to an arbitrary address.
//
//go:nosplit
func Write64(addr uint64, value uint64) {
	*(*uint64)(unsafe.Pointer(uintptr(addr))) = value
}

// Read8 reads an 8-bit value from an arbitrary address.
//
//go:nosplit
func Read8(addr uint64) uint8 {
	return *(*uint8)(unsafe.Pointer(uintptr(addr)))
}

// Write8 writes an 8-bit value to an arbitrary address.
//
//go:nosplit
func Write8(addr uint64, value uint8) {
	*(*uint8)(unsafe.Pointer(uintptr(addr))) = value
}

// CopyBytes copies n bytes from src to dst, both arbitrary addresses.
// Used to migrate the live boot stack onto its higher-half virtual
// image before the trampoline jump (spec.md §4.7 step 12).
//
//go:nosplit
func CopyBytes(dst, src uint64, n uint64) {
	d := (*[1 << 30]byte)(unsafe.Pointer(uintptr(dst)))[:n:n]
	s := (*[1 << 30]byte)(unsafe.Pointer(uintptr(src)))[:n:n]
	copy(d, s)
}

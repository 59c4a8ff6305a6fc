// Package hart implements per-hart context: a small record reachable
// through the supervisor scratch CSR, one per physical hart, that the
// trap vector and the rest of the kernel use to find "which hart am I"
// without any thread-local storage the linker has to cooperate with.
package hart

import (
	"unsafe"

	"novos/asm"
	"novos/internal/fdt"
)

// Context is one hart's local state. Its address, once installed, is
// also what the trap vector prologue swaps into SP to reach
// TrapStack -- see internal/trap.
type Context struct {
	ID        uint64
	BSPID     uint64
	TrapStack uint64 // virtual address of the top of this hart's trap stack
	Scratch   uint64 // trap prologue save slot: holds the current trap frame pointer while the handler runs
	Scratch2  uint64 // trap prologue save slot: the one register it clobbers before a stack is available
	FDT       *fdt.Blob
}

// IsBSP reports whether this hart is the boot hart.
func (c *Context) IsBSP() bool { return c.ID == c.BSPID }

// Install publishes c as the current hart's context by writing its
// address into the scratch CSR. Must be called exactly once per hart,
// before any trap can occur on it.
func Install(c *Context) {
	asm.WriteSscratch(uint64(uintptr(unsafe.Pointer(c))))
}

// Current returns the calling hart's context. It panics if called
// before Install -- use TryCurrent if that is a legitimate state to
// observe.
func Current() *Context {
	c, ok := TryCurrent()
	if !ok {
		panic("hart: Current called before Install")
	}
	return c
}

// TryCurrent returns the calling hart's context, and false if the
// scratch CSR has not been installed yet (its value is zero).
func TryCurrent() (*Context, bool) {
	v := asm.ReadSscratch()
	if v == 0 {
		return nil, false
	}
	return (*Context)(unsafe.Pointer(uintptr(v))), true
}

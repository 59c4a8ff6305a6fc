package boot

import "novos/internal/linksyms"

// Start is the kernel's real hardware entry point, linked at the
// address the firmware load-places the image at. It has no Go body:
// entry_riscv64.s disables supervisor interrupts and falls into
// bootEntryGo with a0/a1 exactly as firmware left them (hart_id,
// fdt_physical_address). Go's own runtime never calls this --
// cmd/novos's func main calls BeforeMain directly instead, purely so
// the toolchain has a complete program to build; see cmd/novos/main.go.
func Start()

// bootEntryGo finishes the parts of the assembly entry's job that are
// easier done in Go -- zeroing the BSS -- then falls into BeforeMain.
// It is never called directly; only Start's assembly reaches it.
//
//go:nosplit
func bootEntryGo(hartID, fdtPtr uint64) {
	zeroBSS()
	BeforeMain(hartID, fdtPtr)
}

func zeroBSS() {
	start := linksyms.Addr(linksyms.BssStart)
	end := linksyms.Addr(linksyms.BssEnd)
	for p := start; p < end; p += 8 {
		linksyms.Write64(p, 0)
	}
}

package boot

import (
	"unsafe"

	"novos/internal/addr"
	"novos/internal/buddy"
	"novos/internal/fdt"
	"novos/internal/layout"
	"novos/internal/linksyms"
	"novos/internal/paging"
)

// orderForBytes returns the smallest buddy order whose block (PageSize
// << order) is at least size bytes.
func orderForBytes(size uint64) int {
	order := 0
	for (buddy.PageSize << uint(order)) < size {
		order++
	}
	return order
}

// relocateFDT copies blob into newly allocated physical memory and
// reparses it there. The original firmware-supplied range stays in
// BeforeMain's reservations, so it is never handed to the allocator.
func relocateFDT(blob *fdt.Blob) *fdt.Blob {
	size := uint64(len(blob.Bytes()))
	phys, err := allocator.ZAlloc(orderForBytes(size))
	if err != nil {
		fatalEarly("allocating FDT copy: " + err.Error())
	}
	dst := uint64(layout.PhysToVirt(phys))
	src := uint64(uintptr(unsafe.Pointer(&blob.Bytes()[0])))
	linksyms.CopyBytes(dst, src, size)

	relocated, err := fdt.Parse(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(dst))), size))
	if err != nil {
		fatalEarly("reparsing relocated device tree: " + err.Error())
	}
	relocatedFDTPhys = phys
	return relocated
}

// mapPhysicalMemory installs the physmem window: every byte of every
// /memory region, megapage-mapped at KernelPhysMemBase+phys.
func mapPhysicalMemory(t *paging.Table, blob *fdt.Blob) error {
	const flags = paging.FlagR | paging.FlagW | paging.FlagA | paging.FlagD
	step := paging.Megapage.Bytes()

	var mapErr error
	err := blob.MemoryRegions(func(base, size uint64) bool {
		aligned := base &^ (step - 1)
		end := (base + size + step - 1) &^ (step - 1)
		for p := aligned; p < end; p += step {
			phys := addr.PhysAddr(p)
			virt := layout.PhysMemWindow(phys)
			if e := t.Map(phys, virt, paging.Megapage, flags); e != nil {
				if pe, ok := e.(*paging.Error); !ok || pe.Kind != paging.AlreadyMapped {
					mapErr = e
					return false
				}
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	return mapErr
}

// mapKernelSections maps every kernel ELF section to its running image.
// This target has no custom linker script placing the kernel at a true
// higher-half link address, so the kernel image is identity-mapped
// (virt == phys) instead -- it still falls outside the physmem window's
// virtual range, so this never collides with mapPhysicalMemory's
// mappings. See DESIGN.md.
func mapKernelSections(t *paging.Table) error {
	pageSize := paging.Kilopage.Bytes()
	for _, s := range linksyms.Sections() {
		var flags paging.Flags
		if s.Readable {
			flags |= paging.FlagR
		}
		if s.Writable {
			flags |= paging.FlagW
		}
		if s.Executable {
			flags |= paging.FlagX
		}
		start := s.Start &^ (pageSize - 1)
		end := (s.End + pageSize - 1) &^ (pageSize - 1)
		for p := start; p < end; p += pageSize {
			err := t.Map(addr.PhysAddr(p), addr.VirtAddr(p), paging.Kilopage, flags)
			if err != nil {
				if pe, ok := err.(*paging.Error); !ok || pe.Kind != paging.AlreadyMapped {
					return err
				}
			}
		}
	}
	return nil
}

// allocAndMapStack allocates one contiguous physical block of at least
// minSize bytes and maps it page by page starting at virtBase. Unlike
// Table.MapAlloc (one independent frame per page), the block is
// contiguous, so its physical base address can be handed to a secondary
// hart before that hart has any page table of its own.
func allocAndMapStack(t *paging.Table, virtBase addr.VirtAddr, minSize uint64) (phys addr.PhysAddr, allocated uint64, err error) {
	order := orderForBytes(minSize)
	phys, err = allocator.ZAlloc(order)
	if err != nil {
		return 0, 0, err
	}
	allocated = buddy.PageSize << uint(order)
	step := paging.Kilopage.Bytes()
	for off := uint64(0); off < allocated; off += step {
		v := virtBase.AddBytes(off)
		p := phys.AddBytes(off)
		if e := t.Map(p, v, paging.Kilopage, paging.FlagR|paging.FlagW); e != nil {
			return 0, 0, e
		}
	}
	return phys, allocated, nil
}

// mapHartStack allocates and maps hartID's ordinary kernel stack.
func mapHartStack(t *paging.Table, hartID uint64) error {
	_, _, err := allocAndMapStack(t, layout.HartStack(hartID), layout.StackSize)
	return err
}

// mapHartTrapStack allocates and maps hartID's dedicated trap stack.
func mapHartTrapStack(t *paging.Table, hartID uint64) error {
	_, _, err := allocAndMapStack(t, layout.HartTrapStack(hartID), layout.TrapStackSize)
	return err
}

// applyRelocations would apply RISCV_RELATIVE dynamic relocations
// against the higher-half base. A Go binary built for this target
// carries none: the linker resolves every address against the final
// link address directly, so there is nothing for this step to do. It
// exists as a named step only so the boot sequence reads the same
// twelve steps the original design calls for. See DESIGN.md.
func applyRelocations() {}

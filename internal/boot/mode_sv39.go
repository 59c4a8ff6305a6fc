//go:build !sv48

package boot

import "novos/internal/paging"

// pagingMode is the paging scheme the boot sequencer installs. Sv39 is
// the default; building with the sv48 tag swaps in the four-level
// mode without touching any of the sequencing logic below, since
// everything downstream is already parameterised by paging.Mode.
var pagingMode = paging.Sv39

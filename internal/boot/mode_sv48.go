//go:build sv48

package boot

import "novos/internal/paging"

// pagingMode is the paging scheme the boot sequencer installs, selected
// at build time by the sv48 tag. See mode_sv39.go for the default.
var pagingMode = paging.Sv48

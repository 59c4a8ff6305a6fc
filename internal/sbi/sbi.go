// Package sbi wraps the RISC-V Supervisor Binary Interface: the
// extensions the kernel consumes (Base, legacy console, HSM, IPI,
// System Reset) and the closed error set every SBI call can fail with.
//
// Every call bottoms out in asm.Ecall, the one place that actually
// executes the `ecall` instruction; this package only knows extension
// and function ids and how to interpret the (error, value) pair SBI
// returns them as.
package sbi

import "novos/asm"

// Extension ids, per the SBI specification.
const (
	extBase           = 0x10
	extLegacyPutchar  = 0x01
	extHSM            = 0x48534D
	extIPI            = 0x735049
	extSystemReset    = 0x53525354
)

// HSM function ids.
const (
	fnHSMStart = 0
	fnHSMStop  = 1
)

// IPI function ids.
const fnIPISend = 0

// System Reset function ids.
const fnSystemReset = 0

// System Reset types and reasons.
const (
	ResetTypeShutdown   = 0
	ResetReasonNone     = 0
	ResetReasonSysFail  = 1
)

// Base extension function ids.
const fnBaseProbeExtension = 3

// ErrorKind is the closed set of SBI call failures.
type ErrorKind int

const (
	Failed ErrorKind = -(iota + 1)
	NotSupported
	InvalidParam
	Denied
	InvalidAddress
	AlreadyAvailable
)

// Error wraps a non-zero SBI error code. Known codes map to one of the
// named ErrorKind values; anything else is carried as Code for the
// caller to inspect (the closed set's "Unknown(code)" member).
type Error struct {
	Code int64
}

func (e Error) Error() string {
	switch ErrorKind(e.Code) {
	case Failed:
		return "sbi: failed"
	case NotSupported:
		return "sbi: not supported"
	case InvalidParam:
		return "sbi: invalid parameter"
	case Denied:
		return "sbi: denied"
	case InvalidAddress:
		return "sbi: invalid address"
	case AlreadyAvailable:
		return "sbi: already available"
	default:
		return "sbi: unknown error"
	}
}

func call(ext, fid int64, a0, a1, a2, a3, a4, a5 int64) (int64, error) {
	errCode, value := asm.Ecall(ext, fid, a0, a1, a2, a3, a4, a5)
	if errCode != 0 {
		return 0, Error{Code: errCode}
	}
	return value, nil
}

// ConsolePutchar writes one byte to the firmware's legacy debug
// console. It exists only for pre-paging diagnostics; once a real
// console driver is available, callers should prefer it.
func ConsolePutchar(c byte) {
	asm.Ecall(extLegacyPutchar, 0, int64(c), 0, 0, 0, 0, 0)
}

// ProbeExtension reports whether the firmware implements the given
// SBI extension.
func ProbeExtension(extensionID int64) (bool, error) {
	v, err := call(extBase, fnBaseProbeExtension, extensionID, 0, 0, 0, 0, 0)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// HartStart starts hartID executing at startAddr (physical) in
// supervisor mode, with opaque delivered in a1. It is how the boot
// hart brings up every secondary hart (§4.8).
func HartStart(hartID uint64, startAddr uint64, opaque uint64) error {
	_, err := call(extHSM, fnHSMStart, int64(hartID), int64(startAddr), int64(opaque), 0, 0, 0)
	return err
}

// HartStop parks the calling hart; it never returns on success.
func HartStop() error {
	_, err := call(extHSM, fnHSMStop, 0, 0, 0, 0, 0, 0)
	return err
}

// SendIPI delivers a supervisor software interrupt to every hart
// selected by hartMask (bit i set means hart i), used by panic to
// halt every other hart.
func SendIPI(hartMask uint64, hartMaskBase uint64) error {
	_, err := call(extIPI, fnIPISend, int64(hartMask), int64(hartMaskBase), 0, 0, 0, 0)
	return err
}

// Shutdown asks the firmware to power off the machine. It does not
// return on success.
func Shutdown() error {
	_, err := call(extSystemReset, fnSystemReset, ResetTypeShutdown, ResetReasonNone, 0, 0, 0, 0)
	return err
}

// FailShutdown asks the firmware to power off the machine, reporting
// that the shutdown follows a failure. It does not return on success.
func FailShutdown() error {
	_, err := call(extSystemReset, fnSystemReset, ResetTypeShutdown, ResetReasonSysFail, 0, 0, 0, 0)
	return err
}

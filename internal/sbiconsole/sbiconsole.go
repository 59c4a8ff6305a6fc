// Package sbiconsole is the boot sequencer's only logger before paging
// and the physmem window exist: it writes one byte at a time through
// the SBI legacy console extension, with no buffering and no
// allocation, since neither is available yet. The boot sequencer keeps
// using it after paging is live (secondary-hart bring-up reports
// through it); it does not install a sink into internal/klog.
package sbiconsole

import "novos/internal/sbi"

// WriteByte writes one byte to the firmware debug console.
func WriteByte(b byte) { sbi.ConsolePutchar(b) }

// WriteString writes s one byte at a time.
func WriteString(s string) {
	for i := 0; i < len(s); i++ {
		WriteByte(s[i])
	}
}

// WriteHex64 writes v as "0x" followed by 16 lowercase hex digits.
func WriteHex64(v uint64) {
	WriteString("0x")
	for i := 60; i >= 0; i -= 4 {
		WriteByte(hexDigit(byte(v>>uint(i)) & 0xf))
	}
}

// WriteUint64 writes v in decimal.
func WriteUint64(v uint64) {
	if v == 0 {
		WriteByte('0')
		return
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	for ; i < len(tmp); i++ {
		WriteByte(tmp[i])
	}
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + (n - 10)
}

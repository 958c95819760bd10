package felica

import (
	"fmt"

	"github.com/gregLibert/felica/pkg/bits"
)

// SystemCode names a logical system on the card. It travels big-endian.
type SystemCode [2]byte

// Well-known system codes.
var (
	SystemCodeAny        = SystemCodeFromUint16(0xFFFF)
	SystemCodeFeliCaLite = SystemCodeFromUint16(0x88B4)
	SystemCodeCommon     = SystemCodeFromUint16(0xFE00)
	SystemCodeCyberne    = SystemCodeFromUint16(0x0003)
	SystemCodeNDEF       = SystemCodeFromUint16(0x12FC)
)

// NewSystemCode copies b into a SystemCode. b must be exactly 2 bytes long.
func NewSystemCode(b []byte) (SystemCode, error) {
	if len(b) != 2 {
		return SystemCode{}, fmt.Errorf("%w: system code needs 2 bytes, got %d", ErrInvalidLength, len(b))
	}
	return SystemCode{b[0], b[1]}, nil
}

// SystemCodeFromUint16 builds a SystemCode from its numeric value.
func SystemCodeFromUint16(v uint16) SystemCode {
	return SystemCode{byte(v >> 8), byte(v)}
}

// Bytes returns the code in wire order.
func (s SystemCode) Bytes() []byte {
	return []byte{s[0], s[1]}
}

// Uint16 returns the numeric value.
func (s SystemCode) Uint16() uint16 {
	return bits.Uint16BE(s[:])
}

func (s SystemCode) String() string {
	name := ""
	switch s {
	case SystemCodeAny:
		name = " (Any)"
	case SystemCodeFeliCaLite:
		name = " (FeliCa Lite)"
	case SystemCodeCommon:
		name = " (Common Area)"
	case SystemCodeCyberne:
		name = " (Cyberne)"
	case SystemCodeNDEF:
		name = " (NDEF)"
	}
	return fmt.Sprintf("%04X%s", s.Uint16(), name)
}

package felica

import (
	"fmt"
	"strings"
	"time"

	"github.com/gregLibert/felica/pkg/bits"
)

// PMm (Manufacture Parameter) is the 8-byte card capability descriptor
// returned by Polling.
//
// Layout:
//   - Byte 0: ROM type.
//   - Byte 1: IC type.
//   - Bytes 2-7: Maximum response time parameters, one per command class.
//
// MAXIMUM RESPONSE TIME:
// Each parameter byte packs three fields:
//   - Bits 8-7: E, the exponent.
//   - Bits 6-4: B, the per-block factor.
//   - Bits 3-1: A, the constant factor.
//
// For a command touching n blocks (or services) the card answers within
// T = 0.3020ms x ((B+1) x n + (A+1)) x 4^E.
type PMm [8]byte

// CommandClass selects one of the six response time parameters.
type CommandClass int

const (
	ClassRequestService CommandClass = iota
	ClassRequestResponse
	ClassAuthenticate
	ClassRead
	ClassWrite
	ClassReserved
)

func (c CommandClass) String() string {
	switch c {
	case ClassRequestService:
		return "Request Service"
	case ClassRequestResponse:
		return "Request Response"
	case ClassAuthenticate:
		return "Authenticate"
	case ClassRead:
		return "Read"
	case ClassWrite:
		return "Write"
	case ClassReserved:
		return "Reserved"
	default:
		return fmt.Sprintf("Unknown Class (%d)", int(c))
	}
}

// responseTimeUnit is 256 x 16 / fc, fc = 13.56 MHz.
const responseTimeUnit = 302 * time.Microsecond

// NewPMm copies b into a PMm. b must be exactly 8 bytes long.
func NewPMm(b []byte) (PMm, error) {
	var p PMm
	if len(b) != len(p) {
		return PMm{}, fmt.Errorf("%w: PMm needs 8 bytes, got %d", ErrInvalidLength, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// Bytes returns the PMm in wire order.
func (p PMm) Bytes() []byte {
	out := make([]byte, len(p))
	copy(out, p[:])
	return out
}

// ICCode returns the ROM type and IC type bytes.
func (p PMm) ICCode() [2]byte {
	return [2]byte{p[0], p[1]}
}

// MaxResponseTime returns the raw parameter byte of a command class.
// Unknown classes yield 0.
func (p PMm) MaxResponseTime(class CommandClass) byte {
	if class < ClassRequestService || class > ClassReserved {
		return 0
	}
	return p[2+int(class)]
}

// Timeout computes the maximum response time of a command of the given class
// touching n blocks or services.
func (p PMm) Timeout(class CommandClass, n int) time.Duration {
	param := p.MaxResponseTime(class)
	e := bits.GetRange(param, 8, 7)
	b := bits.GetRange(param, 6, 4)
	a := bits.GetRange(param, 3, 1)

	units := (int(b)+1)*n + int(a) + 1
	return responseTimeUnit * time.Duration(units) * time.Duration(1<<(2*uint(e)))
}

func (p PMm) String() string {
	return fmt.Sprintf("%X", p[:])
}

// Describe returns a multi-line breakdown of the parameters.
func (p PMm) Describe() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("PMm: %X\n", p[:]))
	sb.WriteString(fmt.Sprintf("    + ROM Type: %02X\n", p[0]))
	sb.WriteString(fmt.Sprintf("    + IC Type:  %02X\n", p[1]))
	for c := ClassRequestService; c <= ClassReserved; c++ {
		sb.WriteString(fmt.Sprintf("    + %-16s %s\n", c.String()+":", bits.BinString(p.MaxResponseTime(c))))
	}
	return strings.TrimRight(sb.String(), "\n")
}

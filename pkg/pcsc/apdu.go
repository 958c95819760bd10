package pcsc

import (
	"bytes"
	"fmt"
)

// PSEUDO-APDUs (PC/SC 2.01 Part 3):
// Contactless readers expose their own services through APDUs carrying the
// reserved class byte 0xFF. The reader consumes them; they never reach the
// card as such.
//
//   [FF][INS][P1][P2]([Lc][DATA])([Le])
//
// The reply follows ISO 7816-4: an optional body and a 2-byte status word.
//
// LENGTH MODES:
//   - Short: Lc/Le on 1 byte (max 255/256 bytes).
//   - Extended: Lc/Le on 2 bytes behind a 00 marker, used when Lc > 255 or
//     Le > 256. Transparent exchanges of long frames need it.

// CLA is the class byte of every reader pseudo-APDU.
const CLA byte = 0xFF

const (
	// MaxShortLc is the largest data field encodable on one byte.
	MaxShortLc = 255

	// MaxShortLe is the largest Ne of the short form; Le=00 encodes it.
	MaxShortLe = 256

	// MaxExtendedLc is the largest data field of the extended form.
	MaxExtendedLc = 65535

	// MaxExtendedLe is the largest Ne of the extended form; Le=0000 encodes it.
	MaxExtendedLe = 65536
)

// Command is a reader pseudo-APDU.
type Command struct {
	Instruction Instruction
	P1, P2      byte
	Data        []byte
	Ne          int // Expected response length (0 means none)
}

// NewCommand creates a pseudo-APDU.
func NewCommand(ins Instruction, p1, p2 byte, data []byte, ne int) *Command {
	return &Command{
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
		Ne:          ne,
	}
}

// Bytes encodes the command, choosing the short or extended form from the
// data length and Ne.
func (c *Command) Bytes() ([]byte, error) {
	nc, ne := len(c.Data), c.Ne
	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("data field of %d bytes exceeds %d", nc, MaxExtendedLc)
	}
	if ne < 0 || ne > MaxExtendedLe {
		return nil, fmt.Errorf("invalid Ne %d", ne)
	}

	var buf bytes.Buffer
	buf.Write([]byte{CLA, byte(c.Instruction), c.P1, c.P2})

	extended := nc > MaxShortLc || ne > MaxShortLe

	if nc > 0 {
		if extended {
			buf.Write([]byte{0x00, byte(nc >> 8), byte(nc)})
		} else {
			buf.WriteByte(byte(nc))
		}
		buf.Write(c.Data)
	}

	if ne > 0 {
		switch {
		case !extended:
			// 256 wraps to 0x00
			buf.WriteByte(byte(ne))
		default:
			if nc == 0 {
				buf.WriteByte(0x00)
			}
			// 65536 wraps to 0x0000
			buf.Write([]byte{byte(ne >> 8), byte(ne)})
		}
	}

	return buf.Bytes(), nil
}

// String returns a readable representation of the command meta-data.
func (c *Command) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Instruction.Verbose(), c.P1, c.P2, len(c.Data), c.Ne)
}

// Response is the reader's reply to a pseudo-APDU.
type Response struct {
	Data   []byte
	Status StatusWord
}

// ParseResponse splits raw into body and status word. raw must hold at
// least the two status bytes.
func ParseResponse(raw []byte) (*Response, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("response too short: length %d", len(raw))
	}

	n := len(raw) - 2
	return &Response{
		Data:   bytes.Clone(raw[:n]),
		Status: NewStatusWord(raw[n], raw[n+1]),
	}, nil
}

// String returns a readable representation of the response.
func (r *Response) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}

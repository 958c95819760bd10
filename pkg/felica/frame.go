package felica

import (
	"bytes"
	"fmt"
)

// FRAME WIRE FORMAT:
// Every frame exchanged with the card is prefixed by its own length.
//
// COMMAND FRAME:
//   [LEN:1][CODE:1][IDm:8]?[PAYLOAD...]
//   - LEN counts every byte of the frame, itself included.
//   - IDm is present for every command addressed to a specific card, i.e. all
//     commands but Polling.
//
// RESPONSE FRAME:
//   [LEN:1][CODE:1][IDm:8][PAYLOAD...]
//
// LIMITS:
// LEN is a single byte, so a frame never exceeds 255 bytes.

const (
	// MaxFrameLength is the largest encodable frame.
	MaxFrameLength = 255

	// frameHeaderLength covers the LEN and CODE bytes.
	frameHeaderLength = 2

	// idmOffset and payloadOffset locate the fixed fields of a response.
	idmOffset     = 2
	payloadOffset = idmOffset + len(IDm{})
)

// CommandFrame is an outbound frame.
type CommandFrame struct {
	length  byte
	code    CommandCode
	idm     *IDm
	payload []byte
}

// NewCommandFrame builds a frame for a registered command code.
// idm must be nil for commands registered without an IDm (Polling), so that
// ParseCommandFrame reads the frame back the same way.
func NewCommandFrame(code CommandCode, idm *IDm, payload []byte) (*CommandFrame, error) {
	info, ok := LookupCommand(code)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedCommand, byte(code))
	}
	if idm != nil && !info.WithIDm {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedIDm, code)
	}

	length := frameHeaderLength + len(payload)
	var id *IDm
	if idm != nil {
		length += len(idm)
		cp := *idm
		id = &cp
	}

	if length > MaxFrameLength {
		return nil, fmt.Errorf("%w: %s needs %d bytes", ErrFrameTooLarge, code, length)
	}

	return &CommandFrame{
		length:  byte(length),
		code:    code,
		idm:     id,
		payload: bytes.Clone(payload),
	}, nil
}

// ParseCommandFrame decodes a serialized command frame. The IDm is read when
// the registry says the command carries one.
func ParseCommandFrame(raw []byte) (*CommandFrame, error) {
	if len(raw) < frameHeaderLength {
		return nil, fmt.Errorf("%w: command frame of %d bytes", ErrShortFrame, len(raw))
	}
	if int(raw[0]) != len(raw) {
		return nil, fmt.Errorf("%w: length byte %d, frame has %d bytes", ErrInvalidLength, raw[0], len(raw))
	}

	code := CommandCode(raw[1])
	info, ok := LookupCommand(code)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedCommand, byte(code))
	}

	rest := raw[frameHeaderLength:]
	if !info.WithIDm {
		return NewCommandFrame(code, nil, rest)
	}

	if len(rest) < len(IDm{}) {
		return nil, fmt.Errorf("%w: %s without IDm", ErrShortFrame, code)
	}
	idm, _ := NewIDm(rest[:len(IDm{})])
	return NewCommandFrame(code, &idm, rest[len(IDm{}):])
}

// Length returns the value of the length byte.
func (f *CommandFrame) Length() int {
	return int(f.length)
}

// Code returns the command code.
func (f *CommandFrame) Code() CommandCode {
	return f.code
}

// IDm returns the target identifier, or nil when the frame has none.
func (f *CommandFrame) IDm() *IDm {
	if f.idm == nil {
		return nil
	}
	cp := *f.idm
	return &cp
}

// Payload returns a copy of the command data.
func (f *CommandFrame) Payload() []byte {
	return bytes.Clone(f.payload)
}

// Bytes serializes the frame.
func (f *CommandFrame) Bytes() []byte {
	buf := make([]byte, 0, f.length)
	buf = append(buf, f.length, byte(f.code))
	if f.idm != nil {
		buf = append(buf, f.idm[:]...)
	}
	return append(buf, f.payload...)
}

// String returns a readable representation of the frame meta-data.
func (f *CommandFrame) String() string {
	target := "broadcast"
	if f.idm != nil {
		target = "IDm " + f.idm.String()
	}
	return fmt.Sprintf("%s | Len: %d | %s | Data: %X", f.code.Verbose(), f.length, target, f.payload)
}

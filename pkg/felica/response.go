package felica

import (
	"bytes"
	"fmt"
	"strings"
)

// ResponseFrame is an inbound frame split at its fixed offsets.
//
// A frame built from an absent reply is empty: zero length and code, no IDm
// and no payload. Executors return it when the target left the field.
type ResponseFrame struct {
	Length  byte
	Code    CommandCode
	IDm     *IDm
	Payload []byte
	Raw     []byte
}

// ParseResponseFrame splits raw at offsets 2 and 10. The length byte is read,
// not checked. A nil raw yields the empty frame; a reply too short to hold
// the code and IDm fails with ErrShortFrame.
func ParseResponseFrame(raw []byte) (ResponseFrame, error) {
	if raw == nil {
		return ResponseFrame{}, nil
	}
	if len(raw) < payloadOffset {
		return ResponseFrame{}, fmt.Errorf("%w: response of %d bytes, need at least %d", ErrShortFrame, len(raw), payloadOffset)
	}

	idm, _ := NewIDm(raw[idmOffset:payloadOffset])
	return ResponseFrame{
		Length:  raw[0],
		Code:    CommandCode(raw[1]),
		IDm:     &idm,
		Payload: bytes.Clone(raw[payloadOffset:]),
		Raw:     bytes.Clone(raw),
	}, nil
}

// IsEmpty reports whether the frame stands for an absent reply.
func (r ResponseFrame) IsEmpty() bool {
	return r.Raw == nil
}

// Bytes returns the raw reply, or nil for the empty frame.
func (r ResponseFrame) Bytes() []byte {
	return bytes.Clone(r.Raw)
}

// String returns a readable representation of the response.
func (r ResponseFrame) String() string {
	if r.IsEmpty() {
		return "No Response"
	}
	return fmt.Sprintf("%s | Len: %d | IDm %s | Data (%d bytes)", r.Code.Verbose(), r.Length, r.IDm, len(r.Payload))
}

func (r ResponseFrame) expect(code CommandCode) error {
	if r.Code != code {
		return fmt.Errorf("%w: got 0x%02X, want 0x%02X (%s)", ErrUnexpectedResponse, byte(r.Code), byte(code), code)
	}
	return nil
}

// writeHeader starts a Describe report with the frame fields.
func (r ResponseFrame) writeHeader(sb *strings.Builder, title string) {
	sb.WriteString(fmt.Sprintf("=== %s ===\n", title))
	if r.IsEmpty() {
		sb.WriteString("[1] Frame: No Response\n")
		return
	}
	sb.WriteString("[1] Frame:\n")
	sb.WriteString(fmt.Sprintf("    + Code:   %02X -> %s\n", byte(r.Code), r.Code))
	sb.WriteString(fmt.Sprintf("    + Length: %d\n", r.Length))
	sb.WriteString(fmt.Sprintf("    + IDm:    %s\n", r.IDm))
}

package felica

import (
	"fmt"
	"strings"

	"github.com/gregLibert/felica/pkg/bits"
)

// DISCOVERY COMMANDS:
//
// 1. Request Service (0x02): asks the key version of each listed service or
//    area. Payload: count (1) + codes (2 each). Reply: count (1) + key
//    versions (2 each, little-endian, 0xFFFF = does not exist).
//
// 2. Request Response (0x04): asks the current mode of the card.
//    Reply: mode (1).
//
// 3. Search Service Code (0x0A): returns the n-th area or service of the
//    current system. Payload: index (2, little-endian, 0 = root area).
//    Reply: a service code (2), an area code and its end (4), or 0xFFFF once
//    the index runs past the last entry.
//
// 4. Request System Code (0x0C): lists the systems of the card.
//    Reply: count (1) + system codes (2 each, big-endian).

// NoKeyVersion marks a service that does not exist on the card.
const NoKeyVersion = 0xFFFF

// RequestServiceResponse is the decoded reply to Request Service.
type RequestServiceResponse struct {
	ResponseFrame
	KeyVersions []uint16
}

// NewRequestServiceCommand builds a Request Service frame.
func NewRequestServiceCommand(idm IDm, codes ...ServiceCode) (*CommandFrame, error) {
	if len(codes) == 0 || len(codes) > 32 {
		return nil, fmt.Errorf("%w: %d nodes (want 1 to 32)", ErrInvalidLength, len(codes))
	}
	payload := []byte{byte(len(codes))}
	for _, c := range codes {
		payload = append(payload, c.Bytes()...)
	}
	return NewCommandFrame(CmdRequestService, &idm, payload)
}

// DecodeRequestServiceResponse decodes the key versions.
func DecodeRequestServiceResponse(f ResponseFrame) (*RequestServiceResponse, error) {
	res := &RequestServiceResponse{ResponseFrame: f}
	if f.IsEmpty() {
		return res, nil
	}
	if len(f.Payload) < 1 {
		return nil, fmt.Errorf("%w: request service response without count", ErrShortFrame)
	}
	n := int(f.Payload[0])
	if len(f.Payload) < 1+2*n {
		return nil, fmt.Errorf("%w: %d key versions announced, %d bytes present", ErrShortFrame, n, len(f.Payload)-1)
	}
	res.KeyVersions = make([]uint16, n)
	for i := range n {
		res.KeyVersions[i] = bits.Uint16LE(f.Payload[1+2*i:])
	}
	return res, nil
}

// RequestResponseResponse is the decoded reply to Request Response.
type RequestResponseResponse struct {
	ResponseFrame
	Mode byte
}

// NewRequestResponseCommand builds a Request Response frame.
func NewRequestResponseCommand(idm IDm) (*CommandFrame, error) {
	return NewCommandFrame(CmdRequestResponse, &idm, nil)
}

// DecodeRequestResponseResponse decodes the card mode.
func DecodeRequestResponseResponse(f ResponseFrame) (*RequestResponseResponse, error) {
	res := &RequestResponseResponse{ResponseFrame: f}
	if f.IsEmpty() {
		return res, nil
	}
	if len(f.Payload) < 1 {
		return nil, fmt.Errorf("%w: request response without mode", ErrShortFrame)
	}
	res.Mode = f.Payload[0]
	return res, nil
}

// RequestSystemCodeResponse is the decoded reply to Request System Code.
type RequestSystemCodeResponse struct {
	ResponseFrame
	SystemCodes []SystemCode
}

// NewRequestSystemCodeCommand builds a Request System Code frame.
func NewRequestSystemCodeCommand(idm IDm) (*CommandFrame, error) {
	return NewCommandFrame(CmdRequestSystemCode, &idm, nil)
}

// DecodeRequestSystemCodeResponse decodes the system code list.
func DecodeRequestSystemCodeResponse(f ResponseFrame) (*RequestSystemCodeResponse, error) {
	res := &RequestSystemCodeResponse{ResponseFrame: f}
	if f.IsEmpty() {
		return res, nil
	}
	if len(f.Payload) < 1 {
		return nil, fmt.Errorf("%w: request system code response without count", ErrShortFrame)
	}
	n := int(f.Payload[0])
	if len(f.Payload) < 1+2*n {
		return nil, fmt.Errorf("%w: %d system codes announced, %d bytes present", ErrShortFrame, n, len(f.Payload)-1)
	}
	res.SystemCodes = make([]SystemCode, n)
	for i := range n {
		res.SystemCodes[i], _ = NewSystemCode(f.Payload[1+2*i : 3+2*i])
	}
	return res, nil
}

// SearchServiceCodeResponse is the decoded reply to Search Service Code.
type SearchServiceCodeResponse struct {
	ResponseFrame
}

// searchEnd is the code returned past the last area or service.
const searchEnd = 0xFFFF

// NewSearchServiceCodeCommand builds a Search Service Code frame.
func NewSearchServiceCodeCommand(idm IDm, index uint16) (*CommandFrame, error) {
	return NewCommandFrame(CmdSearchServiceCode, &idm, bits.PutUint16LE(index))
}

// DecodeSearchServiceCodeResponse wraps a Search Service Code reply.
func DecodeSearchServiceCodeResponse(f ResponseFrame) (*SearchServiceCodeResponse, error) {
	return &SearchServiceCodeResponse{ResponseFrame: f}, nil
}

// IsService reports whether the entry is a service code.
func (r *SearchServiceCodeResponse) IsService() bool {
	return len(r.Payload) == 2 && !r.IsEnd()
}

// IsArea reports whether the entry is an area (code and end code).
func (r *SearchServiceCodeResponse) IsArea() bool {
	return len(r.Payload) == 4
}

// IsEnd reports whether the index ran past the last entry.
func (r *SearchServiceCodeResponse) IsEnd() bool {
	return len(r.Payload) == 2 && bits.Uint16LE(r.Payload) == searchEnd
}

// ServiceCode returns the service found at the index.
func (r *SearchServiceCodeResponse) ServiceCode() (ServiceCode, bool) {
	if !r.IsService() {
		return ServiceCode{}, false
	}
	sc, _ := NewServiceCode(r.Payload)
	return sc, true
}

// Area returns the area code and end code found at the index.
func (r *SearchServiceCodeResponse) Area() (code, end uint16, ok bool) {
	if !r.IsArea() {
		return 0, 0, false
	}
	return bits.Uint16LE(r.Payload[0:2]), bits.Uint16LE(r.Payload[2:4]), true
}

// Describe returns a one-line report of the entry.
func (r *SearchServiceCodeResponse) Describe() string {
	var sb strings.Builder
	r.writeHeader(&sb, "SEARCH SERVICE CODE REPORT")
	switch {
	case r.IsEmpty():
	case r.IsEnd():
		sb.WriteString("    + Entry: End of list")
	case r.IsService():
		sc, _ := r.ServiceCode()
		sb.WriteString(fmt.Sprintf("    + Entry: Service %s", sc))
	case r.IsArea():
		code, end, _ := r.Area()
		sb.WriteString(fmt.Sprintf("    + Entry: Area %04X-%04X", code, end))
	default:
		sb.WriteString(fmt.Sprintf("    + Entry: Unknown (%X)", r.Payload))
	}
	return strings.TrimRight(sb.String(), "\n")
}

package felica

import (
	"bytes"
	"fmt"
	"strings"
)

// POLLING (Command 0x00):
// Polling wakes up every card of the requested system and returns its
// identifiers. It is the only command sent without an IDm.
//
// Request payload:
//   - System code (2 bytes, big-endian). 0xFFFF matches any system.
//   - Request code (1 byte): extra data wanted in the reply.
//   - Time slot (1 byte): number of slots the cards may answer in, minus one.
//
// Response payload:
//   - PMm (8 bytes).
//   - Request data (0 or 2 bytes): the system code, or the communication
//     performance, depending on the request code.

// RequestCode selects the optional data of a Polling response.
type RequestCode byte

const (
	RequestNone                     RequestCode = 0x00
	RequestSystemCode               RequestCode = 0x01
	RequestCommunicationPerformance RequestCode = 0x02
)

// TimeSlot is the number of response slots, minus one (0x00, 0x01, 0x03,
// 0x07 or 0x0F).
type TimeSlot byte

const (
	TimeSlot1  TimeSlot = 0x00
	TimeSlot2  TimeSlot = 0x01
	TimeSlot4  TimeSlot = 0x03
	TimeSlot8  TimeSlot = 0x07
	TimeSlot16 TimeSlot = 0x0F
)

// NewPollingCommand builds a Polling frame.
func NewPollingCommand(sc SystemCode, req RequestCode, slot TimeSlot) (*CommandFrame, error) {
	payload := append(sc.Bytes(), byte(req), byte(slot))
	return NewCommandFrame(CmdPolling, nil, payload)
}

// PollingResponse is the decoded reply to Polling.
type PollingResponse struct {
	ResponseFrame

	// PMm and RequestData are nil when the payload is shorter than 8 bytes.
	// RequestData is empty, not nil, when the card sent the PMm alone.
	PMm         *PMm
	RequestData []byte
}

// DecodePollingResponse splits the payload of a Polling reply.
func DecodePollingResponse(f ResponseFrame) (*PollingResponse, error) {
	res := &PollingResponse{ResponseFrame: f}
	if len(f.Payload) < len(PMm{}) {
		return res, nil
	}

	pmm, _ := NewPMm(f.Payload[:len(PMm{})])
	res.PMm = &pmm
	res.RequestData = bytes.Clone(f.Payload[len(PMm{}):])
	if res.RequestData == nil {
		res.RequestData = []byte{}
	}
	return res, nil
}

// SystemCode returns the system code carried in the request data, when the
// Polling asked for it.
func (r *PollingResponse) SystemCode() (SystemCode, bool) {
	if len(r.RequestData) != 2 {
		return SystemCode{}, false
	}
	sc, _ := NewSystemCode(r.RequestData)
	return sc, true
}

// Describe generates a detailed report of the Polling reply.
func (r *PollingResponse) Describe() string {
	var sb strings.Builder
	r.writeHeader(&sb, "POLLING RESPONSE REPORT")

	sb.WriteString("[=] DATA OUTCOME:\n")
	if r.PMm == nil {
		sb.WriteString("    - No PMm Received.\n")
		return strings.TrimRight(sb.String(), "\n")
	}
	sb.WriteString(fmt.Sprintf("    + PMm:          %s\n", r.PMm))
	sb.WriteString(fmt.Sprintf("    + Request Data: %X\n", r.RequestData))
	return strings.TrimRight(sb.String(), "\n")
}

package felica

import (
	"fmt"
	"strings"
)

// WRITE WITHOUT ENCRYPTION (Command 0x08):
// Writes blocks of services that do not require authentication.
//
// Request payload: the service list and block list of a read, followed by
// 16 bytes of data per block list element.
//
// Response payload: Status Flag 1, Status Flag 2.

// NewWriteWithoutEncryptionCommand builds a Write Without Encryption frame.
// data holds one Block per block list element.
func NewWriteWithoutEncryptionCommand(idm IDm, services []ServiceCode, blocks []BlockListElement, data []Block) (*CommandFrame, error) {
	if len(data) != len(blocks) {
		return nil, fmt.Errorf("%w: %d data blocks for %d block list elements", ErrInvalidLength, len(data), len(blocks))
	}

	payload, err := serviceBlockPayload(services, blocks)
	if err != nil {
		return nil, err
	}
	for _, blk := range data {
		payload = append(payload, blk[:]...)
	}
	return NewCommandFrame(CmdWriteWithoutEncryption, &idm, payload)
}

// WriteResponse is the decoded reply to a write command.
type WriteResponse struct {
	ResponseFrame
	Status Status
}

// DecodeWriteResponse decodes the status flags of a write reply.
func DecodeWriteResponse(f ResponseFrame) (*WriteResponse, error) {
	res := &WriteResponse{ResponseFrame: f}
	if f.IsEmpty() {
		return res, nil
	}
	if len(f.Payload) < 2 {
		return nil, fmt.Errorf("%w: write response without status flags", ErrShortFrame)
	}
	res.Status = Status{Flag1: StatusFlag1(f.Payload[0]), Flag2: StatusFlag2(f.Payload[1])}
	return res, nil
}

// IsSuccess reports whether a reply arrived with normal status flags.
func (r *WriteResponse) IsSuccess() bool {
	return !r.IsEmpty() && r.Status.IsSuccess()
}

// Describe generates a short report of the write reply.
func (r *WriteResponse) Describe() string {
	var sb strings.Builder
	r.writeHeader(&sb, "WRITE RESPONSE REPORT")
	if r.IsEmpty() {
		return strings.TrimRight(sb.String(), "\n")
	}

	resultMsg := "[OK]"
	if !r.Status.IsSuccess() {
		resultMsg = "[!!]"
	}
	sb.WriteString(fmt.Sprintf("    + Result: %s %s", resultMsg, r.Status.Verbose()))
	return sb.String()
}

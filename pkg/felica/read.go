package felica

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gregLibert/felica/pkg/bits"
)

// READ WITHOUT ENCRYPTION (Command 0x06):
// Reads blocks of services that do not require authentication.
//
// Request payload:
//   - Number of services m (1 byte), then m service codes (2 bytes each, as given).
//   - Number of blocks n (1 byte), then n block list elements (2 or 3 bytes each).
//
// Response payload:
//   - Status Flag 1, Status Flag 2.
//   - On normal completion only: number of blocks (1 byte) and the block data
//     (16 bytes per block).

// NewReadWithoutEncryptionCommand builds a Read Without Encryption frame.
func NewReadWithoutEncryptionCommand(idm IDm, services []ServiceCode, blocks []BlockListElement) (*CommandFrame, error) {
	payload, err := serviceBlockPayload(services, blocks)
	if err != nil {
		return nil, err
	}
	return NewCommandFrame(CmdReadWithoutEncryption, &idm, payload)
}

// serviceBlockPayload encodes the service list and block list shared by the
// read and write commands.
func serviceBlockPayload(services []ServiceCode, blocks []BlockListElement) ([]byte, error) {
	if len(services) == 0 || len(services) > maxServiceOrder+1 {
		return nil, fmt.Errorf("%w: %d services (want 1 to 16)", ErrInvalidLength, len(services))
	}
	if len(blocks) == 0 || len(blocks) > 0xFF {
		return nil, fmt.Errorf("%w: %d blocks", ErrInvalidLength, len(blocks))
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(len(services)))
	for _, sc := range services {
		buf.Write(sc.Bytes())
	}
	buf.WriteByte(byte(len(blocks)))
	for _, b := range blocks {
		if int(b.ServiceOrder) >= len(services) {
			return nil, fmt.Errorf("block %04X refers to service #%d of %d", b.BlockNumber, b.ServiceOrder, len(services))
		}
		buf.Write(b.Bytes())
	}
	return buf.Bytes(), nil
}

// ReadResponse is the decoded reply to a read command.
type ReadResponse struct {
	ResponseFrame
	Status Status

	// BlockCount and BlockData are only set on normal completion.
	BlockCount int
	BlockData  []byte
}

// DecodeReadResponse decodes the status flags and, on normal completion,
// the block data.
func DecodeReadResponse(f ResponseFrame) (*ReadResponse, error) {
	res := &ReadResponse{ResponseFrame: f}
	if f.IsEmpty() {
		return res, nil
	}
	if len(f.Payload) < 2 {
		return nil, fmt.Errorf("%w: read response without status flags", ErrShortFrame)
	}

	res.Status = Status{Flag1: StatusFlag1(f.Payload[0]), Flag2: StatusFlag2(f.Payload[1])}
	if !res.Status.IsSuccess() {
		return res, nil
	}

	if len(f.Payload) < 3 {
		return nil, fmt.Errorf("%w: read response without block count", ErrShortFrame)
	}
	res.BlockCount = int(f.Payload[2])
	res.BlockData = append([]byte{}, f.Payload[3:]...)
	return res, nil
}

// IsSuccess reports whether a reply arrived with normal status flags.
func (r *ReadResponse) IsSuccess() bool {
	return !r.IsEmpty() && r.Status.IsSuccess()
}

// HasBlockData reports whether block data was returned.
func (r *ReadResponse) HasBlockData() bool {
	return r.BlockData != nil
}

// Blocks cuts the block data into 16-byte blocks.
func (r *ReadResponse) Blocks() ([]Block, error) {
	if !r.HasBlockData() {
		return nil, fmt.Errorf("%w: no block data (%s)", ErrNoResponse, r.Status.Verbose())
	}
	return SplitBlocks(r.BlockData)
}

// Describe generates a detailed report of the read reply.
func (r *ReadResponse) Describe() string {
	var sb strings.Builder
	r.writeHeader(&sb, "READ RESPONSE REPORT")
	if r.IsEmpty() {
		return strings.TrimRight(sb.String(), "\n")
	}

	resultMsg := "[OK]"
	if !r.Status.IsSuccess() {
		resultMsg = "[!!]"
	}
	sb.WriteString(fmt.Sprintf("    + Result: %s %s\n", resultMsg, r.Status.Verbose()))
	sb.WriteString("\n")

	sb.WriteString("[=] DATA OUTCOME:\n")
	if !r.HasBlockData() {
		sb.WriteString("    - No Data Received.\n")
		return strings.TrimRight(sb.String(), "\n")
	}
	sb.WriteString(fmt.Sprintf("    + Blocks: %d\n", r.BlockCount))
	for i := 0; i*BlockSize < len(r.BlockData); i++ {
		end := min((i+1)*BlockSize, len(r.BlockData))
		chunk := r.BlockData[i*BlockSize : end]
		sb.WriteString(fmt.Sprintf("    + [%02d] %X %q\n", i, chunk, bits.MakeSafeASCII(chunk)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

package felica

import (
	"fmt"
	"strings"
)

// IDm (Manufacture ID) is the 8-byte identifier returned by Polling and
// required by every other command to address the card.
//
// Layout:
//   - Bytes 0-1: Manufacturer code.
//   - Bytes 2-7: Card identification number (equipment, date, serial).
type IDm [8]byte

// NewIDm copies b into an IDm. b must be exactly 8 bytes long.
func NewIDm(b []byte) (IDm, error) {
	var id IDm
	if len(b) != len(id) {
		return IDm{}, fmt.Errorf("%w: IDm needs 8 bytes, got %d", ErrInvalidLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Bytes returns the IDm in wire order.
func (id IDm) Bytes() []byte {
	out := make([]byte, len(id))
	copy(out, id[:])
	return out
}

// ManufacturerCode returns bytes 0-1.
func (id IDm) ManufacturerCode() [2]byte {
	return [2]byte{id[0], id[1]}
}

// CardIdentification returns bytes 2-7.
func (id IDm) CardIdentification() [6]byte {
	var out [6]byte
	copy(out[:], id[2:])
	return out
}

func (id IDm) String() string {
	return fmt.Sprintf("%X", id[:])
}

// Describe returns a multi-line breakdown of the identifier.
func (id IDm) Describe() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("IDm: %X\n", id[:]))
	sb.WriteString(fmt.Sprintf("    + Manufacturer: %X\n", id[0:2]))
	sb.WriteString(fmt.Sprintf("    + Equipment:    %X\n", id[2:4]))
	sb.WriteString(fmt.Sprintf("    + Date:         %X\n", id[4:6]))
	sb.WriteString(fmt.Sprintf("    + Serial:       %X", id[6:8]))
	return sb.String()
}

package felica

import (
	"fmt"
	"strings"

	"github.com/gregLibert/felica/pkg/bits"
)

// BlockSize is the size of a FeliCa memory block.
const BlockSize = 16

// Block is one 16-byte unit of card memory.
type Block [BlockSize]byte

// NewBlock copies b into a Block. b must be exactly 16 bytes long.
func NewBlock(b []byte) (Block, error) {
	var blk Block
	if len(b) != BlockSize {
		return Block{}, fmt.Errorf("%w: block needs %d bytes, got %d", ErrInvalidLength, BlockSize, len(b))
	}
	copy(blk[:], b)
	return blk, nil
}

// SplitBlocks cuts data into consecutive blocks. len(data) must be a
// multiple of BlockSize.
func SplitBlocks(data []byte) ([]Block, error) {
	if len(data)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of blocks", ErrInvalidLength, len(data))
	}
	out := make([]Block, 0, len(data)/BlockSize)
	for off := 0; off < len(data); off += BlockSize {
		blk, _ := NewBlock(data[off : off+BlockSize])
		out = append(out, blk)
	}
	return out, nil
}

// Bytes returns a copy of the block content.
func (b Block) Bytes() []byte {
	out := make([]byte, BlockSize)
	copy(out, b[:])
	return out
}

func (b Block) String() string {
	return fmt.Sprintf("%X", b[:])
}

// MEMORY CONFIGURATION BLOCK (FeliCa Lite, block 0x88):
// - Bytes 0-2: One write-permission bit per user block. Block n is described
//   by bit n%8 of byte n/8; a set bit means read/write, a clear bit read-only.
// - Byte 3:    NDEF support flag (0x01 = the card is NDEF formatted).

// MemoryConfigurationBlock is the FeliCa Lite MC block.
type MemoryConfigurationBlock struct {
	Block
}

// MemoryConfigurationBlockNumber is the block address of the MC block.
const MemoryConfigurationBlockNumber = 0x88

const memoryConfigFlagBlocks = 24

// NewMemoryConfigurationBlock wraps the raw MC block content.
func NewMemoryConfigurationBlock(b []byte) (MemoryConfigurationBlock, error) {
	blk, err := NewBlock(b)
	if err != nil {
		return MemoryConfigurationBlock{}, err
	}
	return MemoryConfigurationBlock{Block: blk}, nil
}

// IsNDEFSupported checks the NDEF flag at byte 3.
func (m MemoryConfigurationBlock) IsNDEFSupported() bool {
	return m.Block[3] == 0x01
}

// IsWritable reports whether every listed block is writable.
// Blocks outside the flag range are never writable.
func (m MemoryConfigurationBlock) IsWritable(blocks ...int) bool {
	for _, n := range blocks {
		if n < 0 || n >= memoryConfigFlagBlocks {
			return false
		}
		if !bits.IsSet(m.Block[n/8], uint(n%8)+1) {
			return false
		}
	}
	return true
}

// Describe returns the per-block permission map.
func (m MemoryConfigurationBlock) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== MEMORY CONFIGURATION BLOCK ===\n")
	sb.WriteString(fmt.Sprintf("    + Raw:          %X\n", m.Block[:]))
	sb.WriteString(fmt.Sprintf("    + NDEF Support: %t\n", m.IsNDEFSupported()))
	for n := 0; n < 16; n++ {
		mode := "RO"
		if m.IsWritable(n) {
			mode = "RW"
		}
		sb.WriteString(fmt.Sprintf("    + Block %02X: %s\n", n, mode))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// BLOCK LIST ELEMENT:
// Read and write commands address blocks through block list elements.
//
// Byte 0:
//   - Bit 8:    Length (1 = 2-byte element, 0 = 3-byte element).
//   - Bits 7-5: Access mode (000 = normal/decrement, 001 = cash-back).
//   - Bits 4-1: Index of the service in the command's service code list.
//
// Following bytes:
//   - 2-byte element: block number (1 byte).
//   - 3-byte element: block number (2 bytes, little-endian).

// AccessMode selects how a purse block is accessed.
type AccessMode byte

const (
	AccessModeDecrement AccessMode = 0x00
	AccessModeCashback  AccessMode = 0x01
)

func (m AccessMode) String() string {
	switch m {
	case AccessModeDecrement:
		return "Normal/Decrement"
	case AccessModeCashback:
		return "Cashback"
	default:
		return fmt.Sprintf("Unknown Mode (%d)", byte(m))
	}
}

const (
	// Bit 8 of the first byte flags the 2-byte form.
	twoByteBit      uint = 8
	maxServiceOrder      = 0x0F
	maxAccessMode        = 0x07
)

// BlockListElement addresses one block of one service.
type BlockListElement struct {
	AccessMode   AccessMode
	ServiceOrder uint8
	BlockNumber  uint16
}

// NewBlockListElement validates the fields of an element.
func NewBlockListElement(mode AccessMode, serviceOrder uint8, blockNumber uint16) (BlockListElement, error) {
	if serviceOrder > maxServiceOrder {
		return BlockListElement{}, fmt.Errorf("service list order %d out of range (max 15)", serviceOrder)
	}
	if mode > maxAccessMode {
		return BlockListElement{}, fmt.Errorf("access mode %d out of range (max 7)", mode)
	}
	return BlockListElement{AccessMode: mode, ServiceOrder: serviceOrder, BlockNumber: blockNumber}, nil
}

// ParseBlockListElement decodes one element from the start of b and returns
// it with the number of bytes consumed.
func ParseBlockListElement(b []byte) (BlockListElement, int, error) {
	if len(b) < 2 {
		return BlockListElement{}, 0, fmt.Errorf("%w: block list element", ErrShortFrame)
	}
	e := BlockListElement{
		AccessMode:   AccessMode(bits.GetRange(b[0], 7, 5)),
		ServiceOrder: bits.GetRange(b[0], 4, 1),
	}
	if bits.IsSet(b[0], twoByteBit) {
		e.BlockNumber = uint16(b[1])
		return e, 2, nil
	}
	if len(b) < 3 {
		return BlockListElement{}, 0, fmt.Errorf("%w: 3-byte block list element", ErrShortFrame)
	}
	e.BlockNumber = bits.Uint16LE(b[1:3])
	return e, 3, nil
}

// Len returns the encoded size: 2 when the block number fits in one byte,
// 3 otherwise.
func (e BlockListElement) Len() int {
	if e.BlockNumber <= 0xFF {
		return 2
	}
	return 3
}

// Bytes encodes the element.
func (e BlockListElement) Bytes() []byte {
	head := byte(e.AccessMode&maxAccessMode)<<4 | e.ServiceOrder&maxServiceOrder
	if e.Len() == 2 {
		return []byte{bits.Set(head, twoByteBit), byte(e.BlockNumber)}
	}
	return append([]byte{bits.Clear(head, twoByteBit)}, bits.PutUint16LE(e.BlockNumber)...)
}

func (e BlockListElement) String() string {
	return fmt.Sprintf("Block %04X (service #%d, %s)", e.BlockNumber, e.ServiceOrder, e.AccessMode)
}

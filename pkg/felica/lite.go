package felica

import (
	"context"
	"fmt"
)

// FELICA LITE:
// FeliCa Lite cards expose a single system (0x88B4) with two fixed services:
//   - 0x000B: read-only access to every block.
//   - 0x0009: read/write access to user blocks.
// Block 0x88 holds the Memory Configuration (MC) block.

// ReadLiteBlock reads one block of a FeliCa Lite card.
func (e *Executor) ReadLiteBlock(ctx context.Context, t Transceiver, idm IDm, block uint16) (*ReadResponse, error) {
	return e.ReadBlock(ctx, t, idm, ServiceFeliCaLiteReadOnly, block)
}

// WriteLiteBlock writes one block of a FeliCa Lite card.
func (e *Executor) WriteLiteBlock(ctx context.Context, t Transceiver, idm IDm, block uint16, data Block) (*WriteResponse, error) {
	return e.WriteBlock(ctx, t, idm, ServiceFeliCaLiteReadWrite, block, data)
}

// MemoryConfiguration reads the MC block of a FeliCa Lite card.
func (e *Executor) MemoryConfiguration(ctx context.Context, t Transceiver, idm IDm) (MemoryConfigurationBlock, error) {
	res, err := e.ReadLiteBlock(ctx, t, idm, MemoryConfigurationBlockNumber)
	if err != nil {
		return MemoryConfigurationBlock{}, err
	}
	if res.IsEmpty() {
		return MemoryConfigurationBlock{}, fmt.Errorf("memory configuration: %w", ErrNoResponse)
	}
	if !res.IsSuccess() {
		return MemoryConfigurationBlock{}, fmt.Errorf("memory configuration: %w", res.Status.Err())
	}
	blocks, err := res.Blocks()
	if err != nil {
		return MemoryConfigurationBlock{}, err
	}
	if len(blocks) == 0 {
		return MemoryConfigurationBlock{}, fmt.Errorf("%w: memory configuration reply without block data", ErrShortFrame)
	}
	return MemoryConfigurationBlock{Block: blocks[0]}, nil
}

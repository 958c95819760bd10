package felica

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestBlockListElement_Encoding(t *testing.T) {
	tests := []struct {
		name     string
		elem     BlockListElement
		expected string
	}{
		{"2-byte: Block 0", BlockListElement{}, "8000"},
		{"2-byte: MC Block", BlockListElement{BlockNumber: 0x88}, "8088"},
		{"2-byte: Service #2, Cashback", BlockListElement{AccessMode: AccessModeCashback, ServiceOrder: 2, BlockNumber: 0x05}, "9205"},
		{"3-byte: Block 0x0102", BlockListElement{BlockNumber: 0x0102}, "000201"},
		{"3-byte: Service #15", BlockListElement{ServiceOrder: 15, BlockNumber: 0xFFFF}, "0FFFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.ToUpper(hex.EncodeToString(tt.elem.Bytes()))
			if got != tt.expected {
				t.Errorf("Mismatch\nExpected: %s\nGot:      %s", tt.expected, got)
			}

			parsed, n, err := ParseBlockListElement(tt.elem.Bytes())
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if n != tt.elem.Len() || parsed != tt.elem {
				t.Errorf("Round trip: got %+v (%d bytes), want %+v", parsed, n, tt.elem)
			}
		})
	}
}

func TestNewBlockListElement_Validation(t *testing.T) {
	if _, err := NewBlockListElement(AccessModeDecrement, 16, 0); err == nil {
		t.Errorf("Service order 16 accepted")
	}
	if _, err := NewBlockListElement(AccessMode(8), 0, 0); err == nil {
		t.Errorf("Access mode 8 accepted")
	}
	if _, _, err := ParseBlockListElement([]byte{0x00, 0x01}); !errors.Is(err, ErrShortFrame) {
		t.Errorf("Truncated 3-byte element: expected ErrShortFrame, got %v", err)
	}
}

func TestMemoryConfigurationBlock(t *testing.T) {
	// Blocks 0, 1 and 9 writable, block 14 read-only, NDEF supported.
	raw, _ := hex.DecodeString("030200010000000000000000000000FF")
	mc, err := NewMemoryConfigurationBlock(raw)
	if err != nil {
		t.Fatalf("NewMemoryConfigurationBlock failed: %v", err)
	}

	if !mc.IsNDEFSupported() {
		t.Errorf("NDEF flag not detected")
	}
	if !mc.IsWritable(0, 1, 9) {
		t.Errorf("Blocks 0, 1 and 9 should be writable")
	}
	if mc.IsWritable(2) || mc.IsWritable(0, 14) {
		t.Errorf("Blocks 2 and 14 should be read-only")
	}
	if mc.IsWritable(24) || mc.IsWritable(-1) {
		t.Errorf("Blocks outside the flag range should never be writable")
	}

	mc.Block[3] = 0x00
	if mc.IsNDEFSupported() {
		t.Errorf("NDEF flag should be cleared")
	}
}

func TestSplitBlocks(t *testing.T) {
	blocks, err := SplitBlocks(make([]byte, 48))
	if err != nil || len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d (%v)", len(blocks), err)
	}
	if _, err := SplitBlocks(make([]byte, 17)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Expected ErrInvalidLength, got %v", err)
	}
}

package bits

import "testing"

func TestBit(t *testing.T) {
	tests := []struct {
		n        uint
		expected byte
	}{
		{1, 0x01}, {5, 0x10}, {8, 0x80}, {0, 0x00},
		{9, 0x00}, //dumb value silently ignored
	}

	for _, tt := range tests {
		if res := Bit(tt.n); res != tt.expected {
			t.Errorf("Bit(%d) = 0x%02X; want 0x%02X", tt.n, res, tt.expected)
		}
	}
}

func TestIsSet(t *testing.T) {
	val := byte(0b10100101)
	if !IsSet(val, 8) {
		t.Error("Bit 8 should be set")
	}
	if IsSet(val, 7) {
		t.Error("Bit 7 should NOT be set")
	}
	if !IsSet(val, 1) {
		t.Error("Bit 1 should be set")
	}
}

func TestGetRange(t *testing.T) {
	tests := []struct {
		name     string
		input    byte
		high     uint
		low      uint
		expected byte
	}{
		{"Access attribute of 0x0B", 0b0000_1011, 6, 1, 0x0B},
		{"Access attribute ignores bits 8-7", 0b1101_0011, 6, 1, 0x13},
		{"Access mode of a block list element", 0b1001_0010, 7, 5, 1},
		{"Service order of a block list element", 0b1001_0010, 4, 1, 2},
		{"Full Byte", 0xAA, 8, 1, 0xAA},
		{"Inverted range", 0xAA, 1, 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := GetRange(tt.input, tt.high, tt.low); res != tt.expected {
				t.Errorf("GetRange(0x%02X, %d, %d) = %d; want %d", tt.input, tt.high, tt.low, res, tt.expected)
			}
		})
	}
}

func TestSetAndClear(t *testing.T) {
	var b byte = 0
	b = Set(b, 8)
	if b != 0x80 {
		t.Errorf("Set(8) = 0b%08b; want 0b10000000", b)
	}
	b = Clear(b, 8)
	if b != 0 {
		t.Errorf("Clear(8) = 0b%08b; want 0", b)
	}
}

package felica

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestServiceCode_AccessAttribute(t *testing.T) {
	tests := []struct {
		code     uint16
		auth     bool
		writable bool
		label    string
	}{
		{0x0009, false, true, "Random RW"},
		{0x000B, false, false, "Random RO"},
		{0x000D, false, true, "Cyclic RW"},
		{0x000F, false, false, "Cyclic RO"},
		{0x0008, true, true, "Random RW (Locked)"},
		{0x0012, true, true, "Purse Cashback (Locked)"},
		{0x0013, false, true, "Purse Cashback"},
		{0x0017, false, false, "Purse RO"},
		{0x108F, false, false, "Cyclic RO"},
		{0x090F, false, false, "Cyclic RO"},
	}

	for _, tt := range tests {
		sc := ServiceCodeFromUint16(tt.code)
		t.Run(sc.String(), func(t *testing.T) {
			if sc.RequiresAuthentication() != tt.auth {
				t.Errorf("RequiresAuthentication() = %t, want %t", sc.RequiresAuthentication(), tt.auth)
			}
			if sc.IsWritable() != tt.writable {
				t.Errorf("IsWritable() = %t, want %t", sc.IsWritable(), tt.writable)
			}
			if got := sc.AccessAttribute().String(); got != tt.label {
				t.Errorf("Label %q, want %q", got, tt.label)
			}
		})
	}
}

func TestServiceCode_WireOrder(t *testing.T) {
	sc, err := NewServiceCode([]byte{0x8F, 0x10})
	if err != nil {
		t.Fatalf("NewServiceCode failed: %v", err)
	}
	if diff := cmp.Diff([]byte{0x8F, 0x10}, sc.Bytes()); diff != "" {
		t.Errorf("Bytes() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{0x10, 0x8F}, sc.LittleEndian()); diff != "" {
		t.Errorf("LittleEndian() mismatch (-want +got):\n%s", diff)
	}
	if sc != ServiceSuicaInOut {
		t.Errorf("Expected the Suica in/out service, got %s", sc)
	}
	if sc.Number() != 0x42 {
		t.Errorf("Number() = 0x%X", sc.Number())
	}
	if _, err := NewServiceCode([]byte{0x01}); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Expected ErrInvalidLength, got %v", err)
	}
}

func TestSystemCode(t *testing.T) {
	sc, err := NewSystemCode([]byte{0x88, 0xB4})
	if err != nil {
		t.Fatalf("NewSystemCode failed: %v", err)
	}
	if sc != SystemCodeFeliCaLite || sc.Uint16() != 0x88B4 {
		t.Errorf("Unexpected system code %s", sc)
	}
	if sc.String() != "88B4 (FeliCa Lite)" {
		t.Errorf("String() = %q", sc.String())
	}
	if SystemCodeFromUint16(0x1234).String() != "1234" {
		t.Errorf("Unnamed code String() = %q", SystemCodeFromUint16(0x1234).String())
	}
}

func TestIDm_Describe(t *testing.T) {
	expected := `IDm: 012E4CF123456789
    + Manufacturer: 012E
    + Equipment:    4CF1
    + Date:         2345
    + Serial:       6789`
	if diff := cmp.Diff(expected, testIDm.Describe()); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}
	if _, err := NewIDm(make([]byte, 7)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Expected ErrInvalidLength, got %v", err)
	}
}

func TestPMm_Timeout(t *testing.T) {
	// Read parameter 0x4B = 01 001 011: E=1, B=1, A=3.
	pmm := PMm{0x00, 0xF1, 0x00, 0x00, 0x00, 0x4B, 0x00, 0x00}

	tests := []struct {
		class CommandClass
		n     int
		want  time.Duration
	}{
		// ((1+1)*1 + 3+1) * 4 = 24 units
		{ClassRead, 1, 24 * responseTimeUnit},
		// ((1+1)*4 + 3+1) * 4 = 48 units
		{ClassRead, 4, 48 * responseTimeUnit},
		// Param 0: (1*1 + 1) * 1 = 2 units
		{ClassWrite, 1, 2 * responseTimeUnit},
	}

	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			if got := pmm.Timeout(tt.class, tt.n); got != tt.want {
				t.Errorf("Timeout(%s, %d) = %s, want %s", tt.class, tt.n, got, tt.want)
			}
		})
	}

	if pmm.MaxResponseTime(CommandClass(9)) != 0 {
		t.Errorf("Unknown class should yield 0")
	}
	if pmm.ICCode() != [2]byte{0x00, 0xF1} {
		t.Errorf("ICCode() = %X", pmm.ICCode())
	}
}

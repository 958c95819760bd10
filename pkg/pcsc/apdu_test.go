package pcsc

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func TestCommand_Encoding(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *Command
		expected string
	}{
		{
			name:     "Case 1: Header Only",
			cmd:      NewCommand(INS_ENVELOPE, 0x00, 0x00, nil, 0),
			expected: "FFC20000",
		},
		{
			name:     "Case 2 Short: GET DATA, Le=256",
			cmd:      NewCommand(INS_GET_DATA, 0x00, 0x00, nil, MaxShortLe),
			expected: "FFCA000000",
		},
		{
			name:     "Case 3 Short: Direct Transmit",
			cmd:      NewCommand(INS_DIRECT_TRANSMIT, 0x00, 0x00, []byte{0x06, 0x00, 0xFF, 0xFF, 0x01, 0x00}, 0),
			expected: "FF000000060600FFFF0100",
		},
		{
			name:     "Case 4 Short: Envelope",
			cmd:      NewCommand(INS_ENVELOPE, 0x00, 0x01, []byte{0x95, 0x00}, MaxShortLe),
			expected: "FFC20001029500" + "00",
		},
		{
			name: "Case 4 Extended: Long Envelope",
			cmd:  NewCommand(INS_ENVELOPE, 0x00, 0x01, make([]byte, 260), MaxShortLe),
			// 00 + Lc 0104 + data + Le 0100
			expected: "FFC20001000104" + strings.Repeat("00", 260) + "0100",
		},
		{
			name:     "Case 2 Extended: Le=65536",
			cmd:      NewCommand(INS_GET_RESPONSE, 0x00, 0x00, nil, MaxExtendedLe),
			expected: "FFC00000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Encoding failed: %v", err)
			}
			gotHex := strings.ToUpper(hex.EncodeToString(got))
			if gotHex != tt.expected {
				t.Errorf("Mismatch\nExpected: %s\nGot:      %s", tt.expected, gotHex)
			}
		})
	}
}

func TestCommand_Limits(t *testing.T) {
	if _, err := NewCommand(INS_ENVELOPE, 0, 0, make([]byte, MaxExtendedLc+1), 0).Bytes(); err == nil {
		t.Error("Expected an error for an oversized data field")
	}
	if _, err := NewCommand(INS_GET_DATA, 0, 0, nil, -1).Bytes(); err == nil {
		t.Error("Expected an error for a negative Ne")
	}
}

func TestParseResponse(t *testing.T) {
	resp, err := ParseResponse([]byte{0x0C, 0x0B, 0x90, 0x00})
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if !bytes.Equal(resp.Data, []byte{0x0C, 0x0B}) || resp.Status != SW_NO_ERROR {
		t.Errorf("Unexpected response %s", resp)
	}

	if _, err := ParseResponse([]byte{0x90}); err == nil {
		t.Error("Expected an error for a 1-byte response")
	}
}

func TestStatusWord(t *testing.T) {
	tests := []struct {
		sw         StatusWord
		success    bool
		noResponse bool
		verbose    string
	}{
		{SW_NO_ERROR, true, false, "[9000] Success"},
		{0x6110, true, false, "Process completed, 16 bytes available"},
		{0x6C05, false, false, "Wrong length, correct Le is 5"},
		{SW_NO_RESPONSE, false, true, "[6300] No response from card"},
		{SW_ERR_NO_RESPONSE, false, true, "[6401] Card timeout"},
		{SW_ERR_FUNC_NOT_SUPP, false, false, "[6A81] Function not supported"},
		{0x6A99, false, false, "[6A99] Checking Error"},
		{0x1234, false, false, "[1234] Unknown Status"},
	}

	for _, tt := range tests {
		t.Run(tt.verbose, func(t *testing.T) {
			if tt.sw.IsSuccess() != tt.success {
				t.Errorf("IsSuccess() = %t", tt.sw.IsSuccess())
			}
			if tt.sw.IsNoResponse() != tt.noResponse {
				t.Errorf("IsNoResponse() = %t", tt.sw.IsNoResponse())
			}
			if got := tt.sw.Verbose(); got != tt.verbose {
				t.Errorf("Verbose() = %q", got)
			}
		})
	}
}

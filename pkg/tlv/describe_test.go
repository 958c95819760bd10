package tlv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/moov-io/bertlv"
)

type mockReply struct {
	Response []byte       `tlv:"97"`
	Label    []byte       `tlv:"50" fmt:"ascii"`
	Timer    []byte       `tlv:"5F46" fmt:"int"`
	Empty    []byte       `tlv:"81"`
	Absent   []byte       `tlv:"82"`
	RawData  []byte       // No tag
	Unknown  []bertlv.TLV `tlv:",unknown"`
}

func TestWriteStructFields(t *testing.T) {
	mock := mockReply{
		Response: []byte{0x0C, 0x0B, 0x01},
		Label:    []byte{'F', 'E', 'L', 'I', 0x00},
		Timer:    []byte{0x00, 0x01, 0x00},
		Empty:    []byte{},
		RawData:  []byte{0xCA, 0xFE},
		Unknown: []bertlv.TLV{
			{Tag: "92", Value: []byte{0x00}},
		},
	}

	tests := []struct {
		name          string
		prefix        string
		input         any
		expectedLines []string
	}{
		{
			name:   "Struct Pointer Input",
			prefix: "Reply",
			input:  &mock,
			expectedLines: []string{
				"    - Reply.Response (97): 0C0B01",
				`    - Reply.Label (50): 46454C4900 ("FELI.")`,
				"    - Reply.Timer (5F46): 000100 (Dec: 256)",
				"    - Reply.Empty (81): (empty)",
				"    - Reply.Unknown Tag 92: 00",
			},
		},
		{
			name:   "Struct Value Input",
			prefix: "Val",
			input:  mock,
			expectedLines: []string{
				"    - Val.Response (97): 0C0B01",
				`    - Val.Label (50): 46454C4900 ("FELI.")`,
				"    - Val.Timer (5F46): 000100 (Dec: 256)",
				"    - Val.Empty (81): (empty)",
				"    - Val.Unknown Tag 92: 00",
			},
		},
		{
			name:          "Nil Pointer",
			prefix:        "Nil",
			input:         (*mockReply)(nil),
			expectedLines: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			WriteStructFields(&sb, tt.prefix, tt.input)
			actualLines := strings.Split(sb.String(), "\n")

			if diff := cmp.Diff(tt.expectedLines, actualLines); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteStructFields_Separator(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("=== HEADER ===")
	WriteStructFields(&sb, "R", mockReply{Response: []byte{0x01}})

	want := "=== HEADER ===\n    - R.Response (97): 01"
	if sb.String() != want {
		t.Errorf("Got %q, want %q", sb.String(), want)
	}
}

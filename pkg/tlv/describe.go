package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/felica/pkg/bits"
)

// WriteStructFields writes one line per populated tagged field of s.
// Lines are joined with newlines without a trailing one; when sb already
// holds content a separating newline is written first.
//
// The `fmt` struct tag selects the rendering of []byte fields: "ascii",
// "int" or hex (default).
func WriteStructFields(sb *strings.Builder, prefix string, s any) {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}

	var lines []string
	for _, f := range structFields(val) {
		switch {
		case f.unknown:
			extra, _ := f.value.Interface().([]bertlv.TLV)
			for _, p := range extra {
				lines = append(lines, fmt.Sprintf("    - %s.Unknown Tag %s: %X", prefix, strings.ToUpper(p.Tag), rawValue(p)))
			}
		case isByteSlice(f.value) && !f.value.IsNil():
			name := fmt.Sprintf("%s (%s)", f.meta.Name, f.tag)
			lines = append(lines, fmt.Sprintf("    - %s.%s: %s", prefix, name, formatValue(f.value.Bytes(), f.meta.Tag.Get("fmt"))))
		}
	}

	if len(lines) == 0 {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Join(lines, "\n"))
}

func formatValue(data []byte, format string) string {
	if len(data) == 0 {
		return "(empty)"
	}
	switch format {
	case "ascii":
		return fmt.Sprintf("%X (%q)", data, bits.MakeSafeASCII(data))
	case "int":
		var n uint64
		for _, b := range data {
			n = n<<8 | uint64(b)
		}
		return fmt.Sprintf("%X (Dec: %d)", data, n)
	default:
		return bits.HexString(data)
	}
}

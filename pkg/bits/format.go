package bits

import (
	"fmt"
	"strings"
)

// HexString renders data as contiguous upper-case hex ("01A2FF").
func HexString(data []byte) string {
	return fmt.Sprintf("%X", data)
}

// BinString renders every byte of data as eight binary digits, most
// significant bit first, without separators.
func BinString(data ...byte) string {
	var sb strings.Builder
	for _, b := range data {
		fmt.Fprintf(&sb, "%08b", b)
	}
	return sb.String()
}

// MakeSafeASCII replaces every non-printable byte with a dot. The result
// has one character per input byte.
func MakeSafeASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

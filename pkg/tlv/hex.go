package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

var hexSeparators = strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "")

// Hex builds a byte slice from hex fragments such as "FF C2 00 01" or
// "5F46:04". It panics on invalid input and is meant for fixtures and
// constant data objects.
func Hex(parts ...string) []byte {
	clean := hexSeparators.Replace(strings.Join(parts, ""))
	data, err := hex.DecodeString(clean)
	if err != nil {
		panic(fmt.Sprintf("invalid input '%s': %v", clean, err))
	}
	return data
}

package bits

// FeliCa mixes byte orders inside a single frame: system codes and the push
// checksum travel big-endian, while service codes, block numbers, search
// indexes, push segment lengths and reader timers travel little-endian.

// PutUint16LE returns v as two little-endian bytes.
func PutUint16LE(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

// PutUint16BE returns v as two big-endian bytes.
func PutUint16BE(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

// Uint16LE reads the first two bytes of b as a little-endian value.
// It returns 0 when b holds fewer than two bytes.
func Uint16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

// Uint16BE reads the first two bytes of b as a big-endian value.
// It returns 0 when b holds fewer than two bytes.
func Uint16BE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return uint16(b[0])<<8 | uint16(b[1])
}

// PutUint32LE returns v as four little-endian bytes.
func PutUint32LE(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// Reverse returns a reversed copy of b.
func Reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

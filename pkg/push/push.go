// Package push builds the payload of the FeliCa Push command (0xB0), which
// asks a mobile handset to launch an application or open a URL.
package push

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/text/encoding/charmap"

	"github.com/gregLibert/felica/pkg/bits"
	"github.com/gregLibert/felica/pkg/felica"
)

// PUSH PAYLOAD:
//
// SEGMENT (one per intent):
//   [TYPE:1][PARAM SIZE:2 LE][URL LEN:2 LE][ICC LEN:2 LE][ICC][URL]
//   - PARAM SIZE counts every byte of the segment but the first three.
//   - ICC is the platform identifier of the handset ("ANDR01").
//
// OUTER FRAMING:
//   [COUNT:1][SEGMENT...][CHECKSUM:2 BE]
//   - CHECKSUM = -(COUNT + sum of every segment byte, read as signed) mod 65536.
//
// PAYLOAD:
//   [CONTENT LENGTH:1][OUTER FRAMING]

// Code is the Push command code. It has no paired response.
const Code felica.CommandCode = 0xB0

// SegmentTypeIntent tags a URL launch segment.
const SegmentTypeIntent byte = 0x01

// DefaultICC is the platform identifier of Android handsets.
const DefaultICC = "ANDR01"

const segmentHeaderLength = 7

var (
	ErrPayloadTooLarge = errors.New("push: payload exceeds 255 bytes")
	ErrNoSegments      = errors.New("push: at least one segment is required")
	ErrEncoding        = errors.New("push: text is not representable in Latin-1")
)

var (
	registerOnce sync.Once
	registerErr  error
)

func init() {
	if err := Register(); err != nil {
		panic(err)
	}
}

// Register adds the Push command to the felica registry. It runs once per
// process; later calls return the outcome of the first one.
func Register() error {
	registerOnce.Do(func() {
		registerErr = felica.RegisterCommand(Code, "Push", true)
	})
	return registerErr
}

// IntentSegment asks the handset to open URL.
type IntentSegment struct {
	URL string
	ICC string // Empty means DefaultICC
}

type options struct {
	legacyZeroURLLength bool
	unsignedChecksum    bool
}

// Option tunes the encoding.
type Option func(*options)

// WithLegacyZeroURLLength writes 0 in the URL length field, as some early
// receivers expect. The URL bytes are still sent.
func WithLegacyZeroURLLength() Option {
	return func(o *options) {
		o.legacyZeroURLLength = true
	}
}

// WithUnsignedChecksum sums the bytes as unsigned values. The default sums
// them as signed bytes, which differs for any byte above 0x7F.
func WithUnsignedChecksum() Option {
	return func(o *options) {
		o.unsignedChecksum = true
	}
}

// Encode builds the complete push payload for segments.
func Encode(segments []IntentSegment, opts ...Option) ([]byte, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	if len(segments) > 0xFF {
		return nil, fmt.Errorf("%w: %d segments", ErrPayloadTooLarge, len(segments))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var outer bytes.Buffer
	outer.WriteByte(byte(len(segments)))
	for i, s := range segments {
		seg, err := s.encode(o)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		outer.Write(seg)
	}
	sum := Checksum(outer.Bytes())
	if o.unsignedChecksum {
		sum = UnsignedChecksum(outer.Bytes())
	}
	outer.Write(bits.PutUint16BE(sum))

	if outer.Len() > 0xFF {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, outer.Len())
	}
	return append([]byte{byte(outer.Len())}, outer.Bytes()...), nil
}

// NewCommand builds the Push frame addressed to idm.
func NewCommand(idm felica.IDm, segments []IntentSegment, opts ...Option) (*felica.CommandFrame, error) {
	if err := Register(); err != nil {
		return nil, err
	}
	payload, err := Encode(segments, opts...)
	if err != nil {
		return nil, err
	}
	return felica.NewCommandFrame(Code, &idm, payload)
}

// Checksum returns the two's complement of the sum of data read as signed
// bytes, truncated to 16 bits. data starts with the segment count.
func Checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(int8(b))
	}
	return -sum
}

// UnsignedChecksum is Checksum over unsigned bytes.
func UnsignedChecksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return -sum
}

func (s IntentSegment) encode(o options) ([]byte, error) {
	icc := s.ICC
	if icc == "" {
		icc = DefaultICC
	}
	iccBytes, err := latin1(icc)
	if err != nil {
		return nil, err
	}
	urlBytes, err := latin1(s.URL)
	if err != nil {
		return nil, err
	}

	size := segmentHeaderLength + len(iccBytes) + len(urlBytes)
	if size > 0xFF {
		return nil, fmt.Errorf("%w: segment of %d bytes", ErrPayloadTooLarge, size)
	}

	urlLen := uint16(len(urlBytes))
	if o.legacyZeroURLLength {
		urlLen = 0
	}

	buf := make([]byte, 0, size)
	buf = append(buf, SegmentTypeIntent)
	buf = append(buf, bits.PutUint16LE(uint16(size-3))...)
	buf = append(buf, bits.PutUint16LE(urlLen)...)
	buf = append(buf, bits.PutUint16LE(uint16(len(iccBytes)))...)
	buf = append(buf, iccBytes...)
	return append(buf, urlBytes...), nil
}

func latin1(s string) ([]byte, error) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrEncoding, s)
	}
	return b, nil
}

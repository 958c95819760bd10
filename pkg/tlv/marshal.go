package tlv

import (
	"fmt"
	"reflect"

	"github.com/moov-io/bertlv"
)

// Marshal encodes the tagged fields of the struct v in declaration order.
// A nil []byte field is omitted; an empty non-nil one encodes as a
// zero-length object. Non-zero nested structs become constructed objects.
func Marshal(v any) ([]byte, error) {
	packets, err := MarshalToPackets(v)
	if err != nil {
		return nil, err
	}
	return bertlv.Encode(packets)
}

// MarshalToPackets is Marshal without the final encoding step.
func MarshalToPackets(v any) ([]bertlv.TLV, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tlv: cannot marshal %s", rv.Kind())
	}

	var out []bertlv.TLV
	for _, f := range structFields(rv) {
		if f.unknown {
			if extra, ok := f.value.Interface().([]bertlv.TLV); ok {
				out = append(out, extra...)
			}
			continue
		}

		switch {
		case isByteSlice(f.value):
			if f.value.IsNil() {
				continue
			}
			out = append(out, bertlv.TLV{Tag: f.tag, Value: f.value.Bytes()})
		case f.value.Kind() == reflect.Struct || f.value.Kind() == reflect.Ptr:
			if f.value.IsZero() {
				continue
			}
			children, err := MarshalToPackets(f.value.Interface())
			if err != nil {
				return nil, fmt.Errorf("tag %s: %w", f.tag, err)
			}
			out = append(out, bertlv.TLV{Tag: f.tag, TLVs: children})
		default:
			return nil, fmt.Errorf("tag %s: unsupported field kind %s", f.tag, f.value.Kind())
		}
	}
	return out, nil
}

// Package tlv maps BER-TLV data objects to Go structures through `tlv`
// struct tags. It carries the data objects exchanged with PC/SC readers
// (transparent exchange, session management, protocol switching).
package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// STRUCT TAGS:
//   `tlv:"97"`        the field receives the value of tag 97.
//   `tlv:",unknown"`  a []bertlv.TLV field collecting every tag no other
//                     field claimed.
//
// Supported field kinds: []byte, nested structs (constructed tags) and
// types implementing Unmarshaler. Repeated tags append to slices of structs.

// Unmarshaler allows custom types to implement their own TLV parsing logic.
type Unmarshaler interface {
	UnmarshalTLV(data []byte) error
}

// Unmarshal parses raw BER-TLV data and maps it into the struct pointed to
// by target.
func Unmarshal(data []byte, target any) error {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Errorf("bertlv decode failed: %w", err)
	}
	return UnmarshalFromPackets(packets, target)
}

// UnmarshalFromPackets maps pre-decoded objects to the struct pointed to by
// target.
func UnmarshalFromPackets(packets []bertlv.TLV, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct")
	}
	v = v.Elem()

	claimed := make([]bool, len(packets))
	var unknown reflect.Value

	for _, f := range structFields(v) {
		if f.unknown {
			unknown = f.value
			continue
		}
		for i, p := range packets {
			if !strings.EqualFold(p.Tag, f.tag) {
				continue
			}
			if err := assign(p, f.value); err != nil {
				return fmt.Errorf("tag %s: %w", f.tag, err)
			}
			claimed[i] = true
		}
	}

	if !unknown.IsValid() || !unknown.CanSet() {
		return nil
	}
	var leftovers []bertlv.TLV
	for i, p := range packets {
		if !claimed[i] {
			leftovers = append(leftovers, p)
		}
	}
	if len(leftovers) > 0 {
		unknown.Set(reflect.ValueOf(leftovers))
	}
	return nil
}

type field struct {
	tag     string
	unknown bool
	value   reflect.Value
	meta    reflect.StructField
}

// structFields lists the tagged fields of v in declaration order.
func structFields(v reflect.Value) []field {
	t := v.Type()
	var out []field
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		cfg, ok := sf.Tag.Lookup("tlv")
		if !ok {
			continue
		}
		name, opt, _ := strings.Cut(cfg, ",")
		out = append(out, field{
			tag:     strings.ToUpper(name),
			unknown: opt == "unknown",
			value:   v.Field(i),
			meta:    sf,
		})
	}
	return out
}

func assign(p bertlv.TLV, dst reflect.Value) error {
	if dst.Kind() == reflect.Slice && !isByteSlice(dst) {
		elem := reflect.New(dst.Type().Elem()).Elem()
		if err := assign(p, elem); err != nil {
			return err
		}
		dst.Set(reflect.Append(dst, elem))
		return nil
	}

	if dst.CanAddr() {
		if u, ok := dst.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalTLV(rawValue(p))
		}
	}

	switch {
	case isByteSlice(dst):
		// Present but empty objects stay distinguishable from absent ones.
		dst.SetBytes(append([]byte{}, rawValue(p)...))
	case dst.Kind() == reflect.Struct:
		if len(p.TLVs) > 0 {
			return UnmarshalFromPackets(p.TLVs, dst.Addr().Interface())
		}
		return Unmarshal(p.Value, dst.Addr().Interface())
	case dst.Kind() == reflect.Ptr && dst.Type().Elem().Kind() == reflect.Struct:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assign(p, dst.Elem())
	default:
		return fmt.Errorf("unsupported field kind %s", dst.Kind())
	}
	return nil
}

func rawValue(p bertlv.TLV) []byte {
	if len(p.TLVs) > 0 {
		if enc, err := bertlv.Encode(p.TLVs); err == nil {
			return enc
		}
	}
	return p.Value
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

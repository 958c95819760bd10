package felica

import (
	"fmt"

	"github.com/gregLibert/felica/pkg/bits"
)

// SERVICE CODE ACCESS ATTRIBUTES (JIS X 6319-4):
// A service code is a 16-bit value whose low 6 bits describe how the service
// may be accessed. The remaining 10 bits number the service.
//
// Bit 1 of the attribute selects "no authentication required" (1) versus
// "authentication required" (0). Bit 2 separates the writable variants (0)
// from the read-only ones (1), with one exception: the purse cash-back /
// decrement services (0x12 and 0x13) are writable although bit 2 is set.
//
//   Attribute  Service                         Writable
//   0x08/0x09  Random, read/write              yes
//   0x0A/0x0B  Random, read only               no
//   0x0C/0x0D  Cyclic, read/write              yes
//   0x0E/0x0F  Cyclic, read only               no
//   0x10/0x11  Purse, direct access            yes
//   0x12/0x13  Purse, cash-back / decrement    yes
//   0x14/0x15  Purse, decrement                yes
//   0x16/0x17  Purse, read only                no

// AccessAttribute is the 6-bit access field of a service code.
type AccessAttribute byte

const (
	AttrRandomRWAuth           AccessAttribute = 0x08
	AttrRandomRW               AccessAttribute = 0x09
	AttrRandomROAuth           AccessAttribute = 0x0A
	AttrRandomRO               AccessAttribute = 0x0B
	AttrCyclicRWAuth           AccessAttribute = 0x0C
	AttrCyclicRW               AccessAttribute = 0x0D
	AttrCyclicROAuth           AccessAttribute = 0x0E
	AttrCyclicRO               AccessAttribute = 0x0F
	AttrPurseDirectAuth        AccessAttribute = 0x10
	AttrPurseDirect            AccessAttribute = 0x11
	AttrPurseCashbackAuth      AccessAttribute = 0x12
	AttrPurseCashback          AccessAttribute = 0x13
	AttrPurseDecrementAuth     AccessAttribute = 0x14
	AttrPurseDecrement         AccessAttribute = 0x15
	AttrPurseReadOnlyAuth      AccessAttribute = 0x16
	AttrPurseReadOnly          AccessAttribute = 0x17
	accessAttributeMask        byte            = 0x3F
	attrNoAuthBit              AccessAttribute = 0x01
	attrReadOnlyBit            AccessAttribute = 0x02
)

// RequiresAuthentication checks the authentication bit (clear = required).
func (a AccessAttribute) RequiresAuthentication() bool {
	return a&attrNoAuthBit == 0
}

// IsWritable checks the read-only bit, honouring the purse cash-back exception.
func (a AccessAttribute) IsWritable() bool {
	return a&attrReadOnlyBit == 0 || a == AttrPurseCashbackAuth || a == AttrPurseCashback
}

func (a AccessAttribute) String() string {
	var kind string
	switch a &^ attrNoAuthBit {
	case AttrRandomRWAuth:
		kind = "Random RW"
	case AttrRandomROAuth:
		kind = "Random RO"
	case AttrCyclicRWAuth:
		kind = "Cyclic RW"
	case AttrCyclicROAuth:
		kind = "Cyclic RO"
	case AttrPurseDirectAuth:
		kind = "Purse Direct"
	case AttrPurseCashbackAuth:
		kind = "Purse Cashback"
	case AttrPurseDecrementAuth:
		kind = "Purse Decrement"
	case AttrPurseReadOnlyAuth:
		kind = "Purse RO"
	default:
		return fmt.Sprintf("Unknown Attribute (0x%02X)", byte(a))
	}
	if a.RequiresAuthentication() {
		return kind + " (Locked)"
	}
	return kind
}

// ServiceCode names a service and carries its access rules.
//
// The card transmits service codes low byte first. ServiceCode keeps the pair
// exactly as given and, alongside it, the reversed pair; the second byte of
// the reversed pair holds the access attribute.
type ServiceCode struct {
	given [2]byte
	le    [2]byte
}

// Well-known service codes.
var (
	ServiceSuicaInOut          = ServiceCodeFromUint16(0x108F)
	ServiceSuicaHistory        = ServiceCodeFromUint16(0x090F)
	ServiceFeliCaLiteReadOnly  = ServiceCodeFromUint16(0x000B)
	ServiceFeliCaLiteReadWrite = ServiceCodeFromUint16(0x0009)
)

// NewServiceCode builds a ServiceCode from its 2 wire bytes (low byte first).
func NewServiceCode(b []byte) (ServiceCode, error) {
	if len(b) != 2 {
		return ServiceCode{}, fmt.Errorf("%w: service code needs 2 bytes, got %d", ErrInvalidLength, len(b))
	}
	return ServiceCode{
		given: [2]byte{b[0], b[1]},
		le:    [2]byte(bits.Reverse(b)),
	}, nil
}

// ServiceCodeFromUint16 builds a ServiceCode from its numeric value.
func ServiceCodeFromUint16(v uint16) ServiceCode {
	sc, _ := NewServiceCode(bits.PutUint16LE(v))
	return sc
}

// Bytes returns the code as given (wire order).
func (s ServiceCode) Bytes() []byte {
	return []byte{s.given[0], s.given[1]}
}

// LittleEndian returns the reversed pair.
func (s ServiceCode) LittleEndian() []byte {
	return []byte{s.le[0], s.le[1]}
}

// Uint16 returns the numeric value.
func (s ServiceCode) Uint16() uint16 {
	return bits.Uint16LE(s.given[:])
}

// Number returns the 10-bit service number.
func (s ServiceCode) Number() uint16 {
	return s.Uint16() >> 6
}

// AccessAttribute returns the low 6 bits of the second little-endian byte.
func (s ServiceCode) AccessAttribute() AccessAttribute {
	return AccessAttribute(s.le[1] & accessAttributeMask)
}

// RequiresAuthentication reports whether the service is locked behind
// mutual authentication.
func (s ServiceCode) RequiresAuthentication() bool {
	return s.AccessAttribute().RequiresAuthentication()
}

// IsWritable reports whether the service accepts writes.
func (s ServiceCode) IsWritable() bool {
	return s.AccessAttribute().IsWritable()
}

func (s ServiceCode) String() string {
	return fmt.Sprintf("%04X %s", s.Uint16(), s.AccessAttribute())
}

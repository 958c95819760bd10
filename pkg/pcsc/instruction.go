package pcsc

import "fmt"

// Instruction is the INS byte of a reader pseudo-APDU.
type Instruction byte

// Reader instructions used by this package.
//
// INS_DIRECT_TRANSMIT (P1=P2=00) hands the data field to the contactless
// front-end unchanged (vendor pass-through). INS_ENVELOPE selects through P2
// one of the PC/SC Part 3 services: session management (00), transparent
// exchange (01) or protocol switching (02).
const (
	INS_DIRECT_TRANSMIT Instruction = 0x00
	INS_GET_RESPONSE    Instruction = 0xC0
	INS_ENVELOPE        Instruction = 0xC2
	INS_GET_DATA        Instruction = 0xCA
)

// P2 values of INS_ENVELOPE.
const (
	P2ManageSession       byte = 0x00
	P2TransparentExchange byte = 0x01
	P2SwitchProtocol      byte = 0x02
)

func (i Instruction) String() string {
	switch i {
	case INS_DIRECT_TRANSMIT:
		return "DIRECT TRANSMIT"
	case INS_GET_RESPONSE:
		return "GET RESPONSE"
	case INS_ENVELOPE:
		return "ENVELOPE"
	case INS_GET_DATA:
		return "GET DATA"
	default:
		return fmt.Sprintf("Instruction(0x%02X)", byte(i))
	}
}

// Verbose returns a human-readable description of the instruction.
func (i Instruction) Verbose() string {
	return fmt.Sprintf("INS: 0x%02X | Command: %s", byte(i), i.String())
}

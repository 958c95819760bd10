package pcsc

import "fmt"

// Reader Status Words:
//
// Pseudo-APDU replies end with an ISO 7816-4 status word. Besides the static
// values below, two ranges are dynamic:
//
// 1. '61XX': Process completed, XX more bytes to fetch with GET RESPONSE.
// 2. '6CXX': Wrong Le, XX is the length the reader expects.
//
// Contactless readers report a card that did not answer (timeout, card
// removed from the field) with '6300'.

// StatusWord represents the two-byte status (SW1-SW2) of a reader reply.
type StatusWord uint16

// NewStatusWord creates a StatusWord instance from two separate bytes.
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

// SW1 returns the first byte (high byte) of the status word.
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the second byte (low byte) of the status word.
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

// IsSuccess returns true for 9000 and for 61XX (data still available).
func (sw StatusWord) IsSuccess() bool {
	return sw == SW_NO_ERROR || sw.SW1() == 0x61
}

// IsNoResponse reports whether the reader got nothing back from the card.
func (sw StatusWord) IsNoResponse() bool {
	return sw == SW_NO_RESPONSE || sw == SW_ERR_NO_RESPONSE
}

// Verbose returns a human-readable description of the status word.
func (sw StatusWord) Verbose() string {
	switch sw.SW1() {
	case 0x61:
		return fmt.Sprintf("Process completed, %d bytes available", sw.SW2())
	case 0x6C:
		return fmt.Sprintf("Wrong length, correct Le is %d", sw.SW2())
	}
	return fmt.Sprintf("[%04X] %s", uint16(sw), sw.String())
}

func (sw StatusWord) String() string {
	if desc, ok := statusDescriptions[sw]; ok {
		return desc
	}
	switch sw.SW1() {
	case 0x62, 0x63:
		return "Warning"
	case 0x64, 0x65, 0x66:
		return "Execution Error"
	case 0x67, 0x68, 0x69, 0x6A, 0x6B, 0x6D, 0x6E, 0x6F:
		return "Checking Error"
	default:
		return "Unknown Status"
	}
}

// Status words returned by PC/SC contactless readers.
const (
	SW_NO_ERROR          StatusWord = 0x9000
	SW_NO_RESPONSE       StatusWord = 0x6300
	SW_ERR_NO_RESPONSE   StatusWord = 0x6401
	SW_ERR_WRONG_LENGTH  StatusWord = 0x6700
	SW_ERR_NOT_ALLOWED   StatusWord = 0x6986
	SW_ERR_FUNC_NOT_SUPP StatusWord = 0x6A81
	SW_ERR_WRONG_P1P2    StatusWord = 0x6B00
	SW_ERR_INS_INVALID   StatusWord = 0x6D00
	SW_ERR_CLA_NOT_SUPP  StatusWord = 0x6E00
	SW_ERR_UNKNOWN       StatusWord = 0x6F00
)

var statusDescriptions = map[StatusWord]string{
	SW_NO_ERROR:          "Success",
	SW_NO_RESPONSE:       "No response from card",
	SW_ERR_NO_RESPONSE:   "Card timeout",
	SW_ERR_WRONG_LENGTH:  "Wrong length",
	SW_ERR_NOT_ALLOWED:   "Command not allowed",
	SW_ERR_FUNC_NOT_SUPP: "Function not supported",
	SW_ERR_WRONG_P1P2:    "Wrong parameters P1-P2",
	SW_ERR_INS_INVALID:   "Instruction not supported",
	SW_ERR_CLA_NOT_SUPP:  "Class not supported",
	SW_ERR_UNKNOWN:       "No precise diagnosis",
}

// StatusError reports a pseudo-APDU the reader rejected.
type StatusError struct {
	Instruction Instruction
	Status      StatusWord
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pcsc: %s rejected: %s", e.Instruction, e.Status.Verbose())
}

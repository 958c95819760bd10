package felica

import "fmt"

// STATUS FLAGS:
// Read and write responses start with two status bytes.
//
// 1. Status Flag 1: where the error happened.
//    - 0x00: Normal completion.
//    - 0xFF: Error not tied to a particular block list element.
//    - Other: Bit position of the failing block list element (0x01 = 1st element, 0x02 = 2nd, ...).
//
// 2. Status Flag 2: what went wrong. Only meaningful when Status Flag 1 is not 0x00.

// StatusFlag1 locates a failure.
type StatusFlag1 byte

// StatusFlag2 qualifies a failure.
type StatusFlag2 byte

const (
	StatusNormal StatusFlag1 = 0x00
	StatusFailed StatusFlag1 = 0xFF
)

const (
	Status2Normal            StatusFlag2 = 0x00
	Status2LengthError       StatusFlag2 = 0x01
	Status2FlowError         StatusFlag2 = 0x02
	Status2MemoryError       StatusFlag2 = 0x70
	Status2WriteLimitError   StatusFlag2 = 0x71
	Status2PurseOverflow     StatusFlag2 = 0x03 // Overflow of a purse block
	Status2CashbackExceeded  StatusFlag2 = 0x04 // Cash-back amount exceeds the purse
	Status2IllegalBlockList  StatusFlag2 = 0xA1 // Illegal number of services
	Status2IllegalCommand    StatusFlag2 = 0xA2 // Illegal command packet (block count)
	Status2IllegalBlockList2 StatusFlag2 = 0xA3 // Illegal block list (service order)
	Status2IllegalService    StatusFlag2 = 0xA4 // Illegal service type
	Status2AccessDenied      StatusFlag2 = 0xA5 // Access is not allowed
	Status2IllegalServiceNum StatusFlag2 = 0xA6 // Illegal service code list
	Status2IllegalBlockNum   StatusFlag2 = 0xA7 // Illegal block number
	Status2WriteDenied       StatusFlag2 = 0xA8 // Data write failure
	Status2KeyChangeFailure  StatusFlag2 = 0xA9 // Key change failure
	Status2IllegalParity     StatusFlag2 = 0xAA // Illegal package parity
	Status2IllegalPackage    StatusFlag2 = 0xAB // Illegal package identifier
	Status2IllegalAccessMode StatusFlag2 = 0xB0 // Illegal access mode for the purse service
)

// IsNormal checks for normal completion.
func (s StatusFlag1) IsNormal() bool {
	return s == StatusNormal
}

// FailingElement returns the 1-based index of the block list element that
// caused the failure, or 0 when the failure is not tied to an element.
func (s StatusFlag1) FailingElement() int {
	if s == StatusNormal || s == StatusFailed {
		return 0
	}
	for i := 0; i < 8; i++ {
		if byte(s)&(1<<i) != 0 {
			return i + 1
		}
	}
	return 0
}

func (s StatusFlag1) String() string {
	switch s {
	case StatusNormal:
		return "Normal"
	case StatusFailed:
		return "Error"
	default:
		return fmt.Sprintf("Error at block list element %d", s.FailingElement())
	}
}

func (s StatusFlag2) String() string {
	switch s {
	case Status2Normal:
		return "Normal"
	case Status2LengthError:
		return "Length error"
	case Status2FlowError:
		return "Flow error"
	case Status2PurseOverflow:
		return "Purse overflow"
	case Status2CashbackExceeded:
		return "Cash-back exceeds purse"
	case Status2MemoryError:
		return "Memory error"
	case Status2WriteLimitError:
		return "Write limit exceeded"
	case Status2IllegalBlockList:
		return "Illegal number of services"
	case Status2IllegalCommand:
		return "Illegal command packet"
	case Status2IllegalBlockList2:
		return "Illegal block list"
	case Status2IllegalService:
		return "Illegal service type"
	case Status2AccessDenied:
		return "Access denied"
	case Status2IllegalServiceNum:
		return "Illegal service code list"
	case Status2IllegalBlockNum:
		return "Illegal block number"
	case Status2WriteDenied:
		return "Write failure"
	case Status2KeyChangeFailure:
		return "Key change failure"
	case Status2IllegalParity:
		return "Illegal package parity"
	case Status2IllegalPackage:
		return "Illegal package identifier"
	case Status2IllegalAccessMode:
		return "Illegal access mode"
	default:
		return "Unknown Status"
	}
}

// Status is the pair of status flags of a read or write response.
type Status struct {
	Flag1 StatusFlag1
	Flag2 StatusFlag2
}

// IsSuccess checks for normal completion.
func (s Status) IsSuccess() bool {
	return s.Flag1.IsNormal()
}

// Verbose returns a human-readable description of the status pair.
func (s Status) Verbose() string {
	if s.IsSuccess() {
		return fmt.Sprintf("[%02X %02X] Normal", byte(s.Flag1), byte(s.Flag2))
	}
	return fmt.Sprintf("[%02X %02X] %s: %s", byte(s.Flag1), byte(s.Flag2), s.Flag1, s.Flag2)
}

// Err turns a failed status into a *StatusError. It returns nil on success.
func (s Status) Err() error {
	if s.IsSuccess() {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError reports a command the card rejected through its status flags.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return "felica: card reported " + e.Status.Verbose()
}

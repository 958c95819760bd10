package felica

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedCommand = errors.New("felica: unsupported command code")
	ErrCommandConflict    = errors.New("felica: command code already registered")
	ErrFrameTooLarge      = errors.New("felica: frame exceeds 255 bytes")
	ErrInvalidLength      = errors.New("felica: invalid length")
	ErrShortFrame         = errors.New("felica: frame too short")
	ErrTransport          = errors.New("felica: transport failure")
	ErrTargetLost         = errors.New("felica: target lost")
	ErrNoResponse         = errors.New("felica: no response from target")
	ErrUnexpectedResponse = errors.New("felica: unexpected response code")
	ErrUnexpectedIDm      = errors.New("felica: command is not addressed to one card")
)

// TransportError reports an I/O failure of the Transceiver while executing
// a command. Target loss is never reported this way.
type TransportError struct {
	Code CommandCode // Command being executed
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("felica: transport failure during %s: %v", e.Code, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransport) match any TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsTransportError checks if err carries a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

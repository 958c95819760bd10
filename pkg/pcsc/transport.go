// Package pcsc carries FeliCa frames over PC/SC contactless readers, either
// through a vendor pass-through pseudo-APDU or through the PC/SC 2.01 Part 3
// transparent exchange.
package pcsc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"github.com/rs/zerolog"

	"github.com/gregLibert/felica/pkg/felica"
)

// Mode selects how FeliCa frames travel through the reader.
type Mode int

const (
	// ModeDirect wraps each frame in a vendor pass-through pseudo-APDU
	// (FF 00 00 00 Lc frame). The reply body is the card's frame.
	ModeDirect Mode = iota

	// ModeTransparent uses the PC/SC 2.01 Part 3 transparent exchange
	// (FF C2 00 01) with BER-TLV data objects.
	ModeTransparent
)

// ParseMode reads "direct" or "transparent".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "direct", "":
		return ModeDirect, nil
	case "transparent":
		return ModeTransparent, nil
	default:
		return 0, fmt.Errorf("unknown reader mode %q (want direct or transparent)", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeTransparent:
		return "transparent"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DefaultTimeout is the transparent exchange timer when none is configured.
const DefaultTimeout = 500 * time.Millisecond

// Transport carries FeliCa frames over a PC/SC reader. It implements
// felica.Transceiver.
type Transport struct {
	client  *Client
	mode    Mode
	timeout time.Duration
	log     zerolog.Logger
}

var _ felica.Transceiver = (*Transport)(nil)

// Option configures a Transport.
type Option func(*Transport)

// WithMode selects the framing mode.
func WithMode(m Mode) Option {
	return func(t *Transport) {
		t.mode = m
	}
}

// WithTimeout sets the card response timer of transparent exchanges.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithLogger traces pseudo-APDUs on logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.log = logger
	}
}

// NewTransport creates a Transport over card.
func NewTransport(card Transmitter, opts ...Option) *Transport {
	t := &Transport{
		mode:    ModeDirect,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.client = NewClient(card, t.log)
	return t
}

// Mode returns the framing mode.
func (t *Transport) Mode() Mode {
	return t.mode
}

// Transceive sends one FeliCa frame and returns the card's reply frame.
// A card that did not answer yields felica.ErrTargetLost.
func (t *Transport) Transceive(ctx context.Context, frame []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		reply []byte
		err   error
	)
	switch t.mode {
	case ModeTransparent:
		reply, err = t.transparentExchange(ctx, frame)
	default:
		reply, err = t.directTransmit(frame)
	}
	if err != nil {
		return nil, mapCardError(err)
	}
	return reply, nil
}

// UID reads the card identifier through GET DATA. For FeliCa cards it is
// the IDm.
func (t *Transport) UID(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trace, err := t.client.Send(NewCommand(INS_GET_DATA, 0x00, 0x00, nil, MaxShortLe))
	if err != nil {
		return nil, mapCardError(err)
	}
	if err := checkTrace(trace); err != nil {
		return nil, mapCardError(err)
	}
	return trace.Data(), nil
}

func (t *Transport) directTransmit(frame []byte) ([]byte, error) {
	trace, err := t.client.Send(NewCommand(INS_DIRECT_TRANSMIT, 0x00, 0x00, frame, 0))
	if err != nil {
		return nil, err
	}
	if err := checkTrace(trace); err != nil {
		return nil, err
	}
	return trace.Data(), nil
}

// checkTrace turns the final status word into an error.
func checkTrace(trace Trace) error {
	last := trace.Last()
	if last == nil {
		return errors.New("pcsc: empty trace")
	}
	sw := last.Response.Status
	if sw.IsNoResponse() {
		return fmt.Errorf("%w: reader status %s", felica.ErrTargetLost, sw.Verbose())
	}
	if !sw.IsSuccess() {
		return &StatusError{Instruction: last.Command.Instruction, Status: sw}
	}
	return nil
}

// mapCardError reports a card that left the field as felica.ErrTargetLost.
func mapCardError(err error) error {
	if errors.Is(err, felica.ErrTargetLost) {
		return err
	}
	for _, lost := range []error{scard.ErrRemovedCard, scard.ErrResetCard, scard.ErrNoSmartcard} {
		if errors.Is(err, lost) {
			return fmt.Errorf("%w: %v", felica.ErrTargetLost, err)
		}
	}
	return err
}

package pcsc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"github.com/rs/zerolog"
)

// ErrNoReader is returned when no PC/SC reader matches the selector.
var ErrNoReader = errors.New("pcsc: no matching reader")

// statusPoll bounds each GetStatusChange wait so cancellation is noticed.
const statusPoll = time.Second

// Reader is one PC/SC reader and, once connected, the card in its field.
type Reader struct {
	Name string

	ctx  *scard.Context
	card *scard.Card
	log  zerolog.Logger
}

// Open establishes a PC/SC context and picks a reader. selector is a reader
// index, a substring of the reader name, or empty for the first reader.
func Open(selector string, log zerolog.Logger) (*Reader, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("list readers: %w", err)
	}

	idx, err := SelectReader(readers, selector)
	if err != nil {
		ctx.Release()
		return nil, err
	}

	log.Info().Int("index", idx).Str("reader", readers[idx]).Msg("Using reader")
	return &Reader{Name: readers[idx], ctx: ctx, log: log}, nil
}

// SelectReader resolves selector against the reader list.
func SelectReader(readers []string, selector string) (int, error) {
	if len(readers) == 0 {
		return 0, ErrNoReader
	}
	if selector == "" {
		return 0, nil
	}
	if v, err := strconv.Atoi(selector); err == nil {
		if v < 0 || v >= len(readers) {
			return 0, fmt.Errorf("%w: index %d out of range (0..%d)", ErrNoReader, v, len(readers)-1)
		}
		return v, nil
	}
	for i, r := range readers {
		if strings.Contains(r, selector) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNoReader, selector)
}

// WaitForCard blocks until a card is present in the reader field or ctx is
// done.
func (r *Reader) WaitForCard(ctx context.Context) error {
	states := []scard.ReaderState{{
		Reader:       r.Name,
		CurrentState: scard.StateUnaware,
	}}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.ctx.GetStatusChange(states, statusPoll); err != nil {
			if errors.Is(err, scard.ErrTimeout) {
				continue
			}
			return fmt.Errorf("status change: %w", err)
		}

		if states[0].EventState&scard.StatePresent != 0 {
			r.log.Debug().Str("reader", r.Name).Msg("Card present")
			return nil
		}
		states[0].CurrentState = states[0].EventState
	}
}

// Connect opens a shared connection to the card in the field.
func (r *Reader) Connect() error {
	card, err := r.ctx.Connect(r.Name, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		return fmt.Errorf("connect %q: %w", r.Name, err)
	}
	r.card = card
	return nil
}

// Transmit sends one APDU to the connected card.
func (r *Reader) Transmit(cmd []byte) ([]byte, error) {
	if r.card == nil {
		return nil, fmt.Errorf("pcsc: %q not connected", r.Name)
	}
	return r.card.Transmit(cmd)
}

// Close disconnects the card, leaving it powered, and releases the context.
func (r *Reader) Close() error {
	var errs []error
	if r.card != nil {
		errs = append(errs, r.card.Disconnect(scard.LeaveCard))
		r.card = nil
	}
	errs = append(errs, r.ctx.Release())
	return errors.Join(errs...)
}

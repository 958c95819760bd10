package felica

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// EXECUTOR:
// The Executor runs one command against one target:
//
// 1. The CommandFrame is serialized.
// 2. The bytes go through the target's Transceiver.
// 3. A lost target is not an error at this layer: it yields the empty
//    ResponseFrame, which callers must treat as "no answer".
// 4. Every other transport failure is returned as a *TransportError.
// 5. The reply is split into a ResponseFrame; the call site decodes it into
//    the response type matching the command it sent.
//
// The Executor holds no per-card state, imposes no timeout and never
// retries. Deadlines and retry policies belong to the caller's context and
// to whoever owns the transport session.

// Transceiver exchanges one frame with a card. Implementations signal that
// the card left the field by returning an error matching ErrTargetLost.
type Transceiver interface {
	Transceive(ctx context.Context, frame []byte) ([]byte, error)
}

// TransceiverFunc adapts a function to the Transceiver interface.
type TransceiverFunc func(ctx context.Context, frame []byte) ([]byte, error)

// Transceive calls f.
func (f TransceiverFunc) Transceive(ctx context.Context, frame []byte) ([]byte, error) {
	return f(ctx, frame)
}

// Executor runs commands through Transceivers.
type Executor struct {
	log zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger makes the Executor trace frames on logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Executor) {
		e.log = logger
	}
}

// NewExecutor creates an Executor. Without options it logs nothing.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute sends cmd to target and returns the raw reply split into a
// ResponseFrame.
func (e *Executor) Execute(ctx context.Context, target Transceiver, cmd *CommandFrame) (ResponseFrame, error) {
	if err := ctx.Err(); err != nil {
		return ResponseFrame{}, err
	}

	raw := cmd.Bytes()
	e.log.Trace().Str("cmd", cmd.Code().String()).Hex("frame", raw).Msg("felica: transceive")

	reply, err := target.Transceive(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrTargetLost) {
			e.log.Debug().Str("cmd", cmd.Code().String()).Msg("felica: target lost, no response")
			return ResponseFrame{}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ResponseFrame{}, err
		}
		e.log.Debug().Err(err).Str("cmd", cmd.Code().String()).Msg("felica: transport failure")
		return ResponseFrame{}, &TransportError{Code: cmd.Code(), Err: err}
	}

	e.log.Trace().Str("cmd", cmd.Code().String()).Hex("reply", reply).Msg("felica: received")

	res, err := ParseResponseFrame(reply)
	if err != nil {
		return ResponseFrame{}, fmt.Errorf("%s reply: %w", cmd.Code(), err)
	}
	return res, nil
}

// Poll sends Polling and decodes the reply. An empty response means no card
// of the system answered.
func (e *Executor) Poll(ctx context.Context, t Transceiver, sc SystemCode, req RequestCode, slot TimeSlot) (*PollingResponse, error) {
	cmd, err := NewPollingCommand(sc, req, slot)
	if err != nil {
		return nil, err
	}
	f, err := e.Execute(ctx, t, cmd)
	if err != nil {
		return nil, err
	}
	return DecodePollingResponse(f)
}

// RequestService asks the key versions of the listed services or areas.
func (e *Executor) RequestService(ctx context.Context, t Transceiver, idm IDm, codes ...ServiceCode) (*RequestServiceResponse, error) {
	cmd, err := NewRequestServiceCommand(idm, codes...)
	if err != nil {
		return nil, err
	}
	f, err := e.Execute(ctx, t, cmd)
	if err != nil {
		return nil, err
	}
	return DecodeRequestServiceResponse(f)
}

// RequestResponse asks the current mode of the card.
func (e *Executor) RequestResponse(ctx context.Context, t Transceiver, idm IDm) (*RequestResponseResponse, error) {
	cmd, err := NewRequestResponseCommand(idm)
	if err != nil {
		return nil, err
	}
	f, err := e.Execute(ctx, t, cmd)
	if err != nil {
		return nil, err
	}
	return DecodeRequestResponseResponse(f)
}

// ReadWithoutEncryption reads the addressed blocks.
func (e *Executor) ReadWithoutEncryption(ctx context.Context, t Transceiver, idm IDm, services []ServiceCode, blocks []BlockListElement) (*ReadResponse, error) {
	cmd, err := NewReadWithoutEncryptionCommand(idm, services, blocks)
	if err != nil {
		return nil, err
	}
	f, err := e.Execute(ctx, t, cmd)
	if err != nil {
		return nil, err
	}
	return DecodeReadResponse(f)
}

// ReadBlock reads one block of one service.
func (e *Executor) ReadBlock(ctx context.Context, t Transceiver, idm IDm, sc ServiceCode, block uint16) (*ReadResponse, error) {
	elem := BlockListElement{AccessMode: AccessModeDecrement, BlockNumber: block}
	return e.ReadWithoutEncryption(ctx, t, idm, []ServiceCode{sc}, []BlockListElement{elem})
}

// WriteWithoutEncryption writes one Block per block list element.
func (e *Executor) WriteWithoutEncryption(ctx context.Context, t Transceiver, idm IDm, services []ServiceCode, blocks []BlockListElement, data []Block) (*WriteResponse, error) {
	cmd, err := NewWriteWithoutEncryptionCommand(idm, services, blocks, data)
	if err != nil {
		return nil, err
	}
	f, err := e.Execute(ctx, t, cmd)
	if err != nil {
		return nil, err
	}
	return DecodeWriteResponse(f)
}

// WriteBlock writes one block of one service.
func (e *Executor) WriteBlock(ctx context.Context, t Transceiver, idm IDm, sc ServiceCode, block uint16, data Block) (*WriteResponse, error) {
	elem := BlockListElement{AccessMode: AccessModeDecrement, BlockNumber: block}
	return e.WriteWithoutEncryption(ctx, t, idm, []ServiceCode{sc}, []BlockListElement{elem}, []Block{data})
}

// RequestSystemCodes lists the systems of the card.
func (e *Executor) RequestSystemCodes(ctx context.Context, t Transceiver, idm IDm) ([]SystemCode, error) {
	cmd, err := NewRequestSystemCodeCommand(idm)
	if err != nil {
		return nil, err
	}
	f, err := e.Execute(ctx, t, cmd)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", CmdRequestSystemCode, ErrNoResponse)
	}
	res, err := DecodeRequestSystemCodeResponse(f)
	if err != nil {
		return nil, err
	}
	return res.SystemCodes, nil
}

// SearchServiceCode returns the area or service at index (1-based; 0 is the
// root area). A reply carrying another response code fails with
// ErrUnexpectedResponse.
func (e *Executor) SearchServiceCode(ctx context.Context, t Transceiver, idm IDm, index uint16) (*SearchServiceCodeResponse, error) {
	cmd, err := NewSearchServiceCodeCommand(idm, index)
	if err != nil {
		return nil, err
	}
	f, err := e.Execute(ctx, t, cmd)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return nil, fmt.Errorf("%s #%d: %w", CmdSearchServiceCode, index, ErrNoResponse)
	}
	if err := f.expect(RespSearchServiceCode); err != nil {
		return nil, err
	}
	return DecodeSearchServiceCodeResponse(f)
}

// ServiceCodes enumerates the services of the polled system by issuing
// Search Service Code for index 1, 2, ... until the card answers with a
// payload that is neither 2 nor 4 bytes long, or with the 0xFFFF end marker.
// Areas (4-byte answers) are skipped; the end marker is never returned.
func (e *Executor) ServiceCodes(ctx context.Context, t Transceiver, idm IDm) ([]ServiceCode, error) {
	var out []ServiceCode
	for index := uint16(1); index != 0; index++ {
		res, err := e.SearchServiceCode(ctx, t, idm, index)
		if err != nil {
			return out, err
		}

		if len(res.Payload) != 2 && len(res.Payload) != 4 {
			break
		}
		if res.IsEnd() {
			break
		}
		if sc, ok := res.ServiceCode(); ok {
			out = append(out, sc)
		}
	}
	return out, nil
}

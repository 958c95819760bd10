package pcsc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/felica/pkg/bits"
	"github.com/gregLibert/felica/pkg/felica"
	"github.com/gregLibert/felica/pkg/tlv"
)

// TRANSPARENT EXCHANGE (PC/SC 2.01 Part 3):
// The host drives the RF protocol itself through data objects sent in
// FF C2 00 P2 envelopes.
//
// SESSION (P2=00):       81 00 starts, 82 00 ends a transparent session.
// SWITCH (P2=02):        8F 02 03 00 selects FeliCa (ISO 18092 212/424).
// EXCHANGE (P2=01):      5F46 04 <timer, us, LE> + 95 <frame>.
//
// Every reply starts with the generic error status C0 03 <DO index> <SW>.
// The card's frame comes back in 97; no 97 object means the card did not
// answer before the timer expired.

// Protocol switch value selecting FeliCa at layer 2.
var switchFeliCa = tlv.Hex("0300")

type sessionRequest struct {
	Start []byte `tlv:"81"`
	End   []byte `tlv:"82"`
}

type switchRequest struct {
	Protocol []byte `tlv:"8F"`
}

type exchangeRequest struct {
	Timer      []byte `tlv:"5F46" fmt:"int"`
	Transceive []byte `tlv:"95"`
}

type exchangeReply struct {
	ErrorStatus errorStatus  `tlv:"C0"`
	Response    []byte       `tlv:"97"`
	Unknown     []bertlv.TLV `tlv:",unknown"`
}

// errorStatus is the C0 generic error status object.
type errorStatus struct {
	Present bool
	Index   byte // 1-based index of the failing object, 0 when none
	SW      StatusWord
}

func (e *errorStatus) UnmarshalTLV(data []byte) error {
	if len(data) != 3 {
		return fmt.Errorf("error status of %d bytes", len(data))
	}
	e.Present = true
	e.Index = data[0]
	e.SW = NewStatusWord(data[1], data[2])
	return nil
}

func (r *exchangeReply) describe() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status: %s (object %d)", r.ErrorStatus.SW.Verbose(), r.ErrorStatus.Index))
	tlv.WriteStructFields(&sb, "Reply", r)
	return sb.String()
}

// StartSession opens a transparent session and switches the reader to
// FeliCa. It is a no-op in direct mode.
func (t *Transport) StartSession(ctx context.Context) error {
	if t.mode != ModeTransparent {
		return nil
	}
	if _, err := t.envelope(ctx, P2ManageSession, sessionRequest{Start: []byte{}}); err != nil {
		return fmt.Errorf("start session: %w", mapCardError(err))
	}
	if _, err := t.envelope(ctx, P2SwitchProtocol, switchRequest{Protocol: switchFeliCa}); err != nil {
		return fmt.Errorf("switch to FeliCa: %w", mapCardError(err))
	}
	return nil
}

// EndSession closes the transparent session. It is a no-op in direct mode.
func (t *Transport) EndSession(ctx context.Context) error {
	if t.mode != ModeTransparent {
		return nil
	}
	if _, err := t.envelope(ctx, P2ManageSession, sessionRequest{End: []byte{}}); err != nil {
		return fmt.Errorf("end session: %w", mapCardError(err))
	}
	return nil
}

func (t *Transport) transparentExchange(ctx context.Context, frame []byte) ([]byte, error) {
	req := exchangeRequest{
		Timer:      bits.PutUint32LE(uint32(t.timer(ctx) / time.Microsecond)),
		Transceive: frame,
	}
	reply, err := t.envelope(ctx, P2TransparentExchange, req)
	if err != nil {
		return nil, err
	}
	if reply.Response == nil {
		return nil, fmt.Errorf("%w: no response object", felica.ErrTargetLost)
	}
	return reply.Response, nil
}

// timer returns the configured timeout, shortened to the context deadline.
func (t *Transport) timer(ctx context.Context) time.Duration {
	d := t.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 && left < d {
			d = left
		}
	}
	return d
}

// envelope sends one FF C2 00 P2 command and decodes its reply.
func (t *Transport) envelope(ctx context.Context, p2 byte, req any) (*exchangeReply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := tlv.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode data objects: %w", err)
	}

	trace, err := t.client.Send(NewCommand(INS_ENVELOPE, 0x00, p2, data, MaxShortLe))
	if err != nil {
		return nil, err
	}
	if err := checkTrace(trace); err != nil {
		return nil, err
	}

	var reply exchangeReply
	if err := tlv.Unmarshal(trace.Data(), &reply); err != nil {
		return nil, fmt.Errorf("decode data objects: %w", err)
	}
	if e := t.log.Trace(); e.Enabled() {
		e.Str("reply", reply.describe()).Msg("pcsc: transparent reply")
	}

	if reply.ErrorStatus.Present && reply.ErrorStatus.SW != SW_NO_ERROR {
		if reply.ErrorStatus.SW.IsNoResponse() {
			return nil, fmt.Errorf("%w: %s", felica.ErrTargetLost, reply.ErrorStatus.SW.Verbose())
		}
		return nil, &StatusError{Instruction: INS_ENVELOPE, Status: reply.ErrorStatus.SW}
	}
	return &reply, nil
}

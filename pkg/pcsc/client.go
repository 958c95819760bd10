package pcsc

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CLIENT:
// The Client sends pseudo-APDUs and absorbs the two ISO 7816-3 transport
// behaviors some readers surface to the application:
//
// 1. "61 XX": XX bytes are waiting; the client issues GET RESPONSE.
// 2. "6C XX": Le was wrong; the client re-sends the command with Le = XX.
//
// Send returns the whole Trace of the exchange.

// Transmitter abstracts the physical reader connection. *scard.Card
// satisfies it.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client manages the APDU-level communication with the reader.
type Client struct {
	Card Transmitter
	log  zerolog.Logger
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter, log zerolog.Logger) *Client {
	return &Client{Card: card, log: log}
}

// maxChain bounds the GET RESPONSE / re-send recursion.
const maxChain = 16

// Send transmits a command and handles protocol logic (61xx, 6Cxx).
func (c *Client) Send(cmd *Command) (Trace, error) {
	return c.send(cmd, 0)
}

func (c *Client) send(cmd *Command, depth int) (Trace, error) {
	if depth > maxChain {
		return nil, fmt.Errorf("%s: more than %d chained replies", cmd.Instruction, maxChain)
	}

	rawCmd, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	c.log.Trace().Hex("apdu", rawCmd).Msg("pcsc: >>")
	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}
	c.log.Trace().Hex("apdu", rawResp).Msg("pcsc: <<")

	resp, err := ParseResponse(rawResp)
	if err != nil {
		return nil, err
	}

	trace := Trace{{Command: cmd, Response: resp}}
	sw1, sw2 := resp.Status.SW1(), resp.Status.SW2()

	var next *Command
	switch sw1 {
	case 0x61:
		ne := int(sw2)
		if ne == 0 {
			ne = MaxShortLe
		}
		next = NewCommand(INS_GET_RESPONSE, 0x00, 0x00, nil, ne)
	case 0x6C:
		retry := *cmd
		retry.Ne = int(sw2)
		if retry.Ne == 0 {
			retry.Ne = MaxShortLe
		}
		next = &retry
	default:
		return trace, nil
	}

	sub, err := c.send(next, depth+1)
	trace = append(trace, sub...)
	return trace, err
}

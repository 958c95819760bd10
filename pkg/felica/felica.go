/*
Package felica implements the command and response layer of FeliCa
(JIS X 6319-4) contactless cards.

The package builds outbound command frames, sends them through a
Transceiver and splits the replies into typed responses. It knows nothing
about readers: any transport able to exchange one frame with a card can be
plugged in (see package pcsc for a PC/SC implementation).

# Frames

Every frame starts with its own length byte, so no frame exceeds 255 bytes:

	Command:  [LEN][CODE][IDm]?[PAYLOAD...]
	Response: [LEN][CODE][IDm][PAYLOAD...]

Polling is the only command sent without an IDm. Response codes are the
command code plus one.

# Lost Targets

A card leaving the field is not an error. The Executor returns the empty
ResponseFrame instead, and every decoder maps it to an empty typed response
(IsEmpty reports true). Real I/O failures surface as *TransportError.

# Usage Example: Dumping a FeliCa Lite Card

	exec := felica.NewExecutor(felica.WithLogger(logger))

	poll, err := exec.Poll(ctx, reader, felica.SystemCodeFeliCaLite, felica.RequestSystemCode, felica.TimeSlot1)
	if err != nil {
	    log.Fatal(err)
	}
	if poll.IsEmpty() {
	    log.Fatal("no card")
	}

	for block := uint16(0); block < 0x0E; block++ {
	    res, err := exec.ReadLiteBlock(ctx, reader, *poll.IDm, block)
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(res.Describe())
	}

# Extension Commands

Vendor commands can be added at run time with RegisterCommand. Registering
the same code twice with identical attributes is a no-op.
*/
package felica

package pcsc

// TRACE:
// A single logical exchange with the reader may take several pseudo-APDUs:
// a '61XX' reply triggers GET RESPONSE, a '6CXX' reply re-sends the command
// with the suggested Le. A Trace keeps every pair in order so transports can
// log the full conversation and read the final outcome.

// Transaction represents a completed Command-Response pair.
type Transaction struct {
	Command  *Command
	Response *Response
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is the ordered list of transactions of one logical exchange.
type Trace []Transaction

// Last returns the final transaction of the trace, or nil.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the final transaction was successful.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Data concatenates the bodies of the trace. GET RESPONSE chains split one
// reply across several transactions.
func (t Trace) Data() []byte {
	var out []byte
	for _, tx := range t {
		if tx.Response != nil {
			out = append(out, tx.Response.Data...)
		}
	}
	return out
}

package pcsc

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gregLibert/felica/pkg/tlv"
)

// exchange is one expected APDU and the reader's scripted reply.
type exchange struct {
	cmd   string
	reply string
	err   error
}

// fakeCard replays a script and fails the test on unexpected commands.
type fakeCard struct {
	t      *testing.T
	script []exchange
	pos    int
}

func newFakeCard(t *testing.T, script ...exchange) *fakeCard {
	return &fakeCard{t: t, script: script}
}

func (f *fakeCard) Transmit(cmd []byte) ([]byte, error) {
	f.t.Helper()
	if f.pos >= len(f.script) {
		f.t.Fatalf("unexpected APDU %X", cmd)
	}
	ex := f.script[f.pos]
	f.pos++

	want := strings.ToUpper(strings.ReplaceAll(ex.cmd, " ", ""))
	if got := fmt.Sprintf("%X", cmd); got != want {
		f.t.Errorf("APDU #%d mismatch\nExpected: %s\nGot:      %s", f.pos, want, got)
	}
	if ex.err != nil {
		return nil, ex.err
	}
	return tlv.Hex(ex.reply), nil
}

func (f *fakeCard) done() {
	f.t.Helper()
	if f.pos != len(f.script) {
		f.t.Errorf("%d scripted APDUs not sent", len(f.script)-f.pos)
	}
}

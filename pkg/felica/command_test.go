package felica

import (
	"errors"
	"sync"
	"testing"
)

func TestCommandCode_Registry(t *testing.T) {
	tests := []struct {
		code     CommandCode
		name     string
		withIDm  bool
		response bool
	}{
		{CmdPolling, "Polling", false, false},
		{RespPolling, "Polling (response)", true, true},
		{CmdReadWithoutEncryption, "Read Without Encryption", true, false},
		{RespSearchServiceCode, "Search Service Code (response)", true, true},
		{CmdWrite, "Write", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := LookupCommand(tt.code)
			if !ok {
				t.Fatalf("0x%02X not registered", byte(tt.code))
			}
			if info.Name != tt.name || info.WithIDm != tt.withIDm {
				t.Errorf("Got %+v", info)
			}
			if tt.code.IsResponse() != tt.response {
				t.Errorf("IsResponse() = %t", tt.code.IsResponse())
			}
		})
	}

	if CmdRequestSystemCode.Response() != RespRequestSystemCode {
		t.Errorf("Response() pairing broken")
	}
	if got := CommandCode(0xEE).String(); got != "CommandCode(0xEE)" {
		t.Errorf("Unknown code String() = %q", got)
	}
	if CommandCode(0xEE).IsSupported() {
		t.Errorf("0xEE should not be supported")
	}
}

func TestRegisterCommand(t *testing.T) {
	const code = CommandCode(0xE0)

	if err := RegisterCommand(code, "Vendor Test", true); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	if err := RegisterCommand(code, "Vendor Test", true); err != nil {
		t.Errorf("Identical registration should be a no-op, got %v", err)
	}
	if err := RegisterCommand(code, "Other Name", true); !errors.Is(err, ErrCommandConflict) {
		t.Errorf("Expected ErrCommandConflict, got %v", err)
	}
	if err := RegisterCommand(CmdPolling, "Polling", true); !errors.Is(err, ErrCommandConflict) {
		t.Errorf("Redefining Polling should conflict, got %v", err)
	}

	f, err := NewCommandFrame(code, &testIDm, []byte{0x01})
	if err != nil {
		t.Fatalf("Registered code rejected: %v", err)
	}
	if f.Code().String() != "Vendor Test" {
		t.Errorf("Unexpected name %q", f.Code())
	}

	found := false
	prev := -1
	for _, info := range RegisteredCommands() {
		if int(info.Code) <= prev {
			t.Errorf("RegisteredCommands not ordered at 0x%02X", byte(info.Code))
		}
		prev = int(info.Code)
		if info.Code == code {
			found = true
		}
	}
	if !found {
		t.Errorf("0x%02X missing from RegisteredCommands", byte(code))
	}
}

func TestRegisterCommand_Concurrent(t *testing.T) {
	const code = CommandCode(0xE2)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := RegisterCommand(code, "Concurrent", false); err != nil {
				errs <- err
			}
			_ = code.IsSupported()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent registration failed: %v", err)
	}
}

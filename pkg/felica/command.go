package felica

import (
	"fmt"
	"sort"
	"sync"
)

// COMMAND CODE REGISTRY:
// Every FeliCa frame carries a one-byte command code right after the length
// byte. Commands are even, their responses are the following odd value
// (Polling 0x00 answers with 0x01, Read Without Encryption 0x06 with 0x07).
//
// The registry is process-wide and append-only. It is populated with the
// JIS X 6319-4 command set when the package is initialised; extensions
// (the push command 0xB0) add their own codes once, from their package init,
// through RegisterCommand. Frames can only be built for registered codes.

// CommandCode is the command or response code byte of a frame.
type CommandCode byte

// Command and response codes defined by JIS X 6319-4.
const (
	CmdPolling                 CommandCode = 0x00
	RespPolling                CommandCode = 0x01
	CmdRequestService          CommandCode = 0x02
	RespRequestService         CommandCode = 0x03
	CmdRequestResponse         CommandCode = 0x04
	RespRequestResponse        CommandCode = 0x05
	CmdReadWithoutEncryption   CommandCode = 0x06
	RespReadWithoutEncryption  CommandCode = 0x07
	CmdWriteWithoutEncryption  CommandCode = 0x08
	RespWriteWithoutEncryption CommandCode = 0x09
	CmdSearchServiceCode       CommandCode = 0x0A
	RespSearchServiceCode      CommandCode = 0x0B
	CmdRequestSystemCode       CommandCode = 0x0C
	RespRequestSystemCode      CommandCode = 0x0D
	CmdAuthentication1         CommandCode = 0x10
	RespAuthentication1        CommandCode = 0x11
	CmdAuthentication2         CommandCode = 0x12
	RespAuthentication2        CommandCode = 0x13
	CmdRead                    CommandCode = 0x14
	RespRead                   CommandCode = 0x15
	CmdWrite                   CommandCode = 0x16
	RespWrite                  CommandCode = 0x17
)

// CommandInfo describes a registered code.
type CommandInfo struct {
	Code CommandCode
	Name string
	// WithIDm is true when frames of this code carry the 8-byte IDm after the
	// code byte. Only Polling is addressed to every card in the field.
	WithIDm bool
}

type registry struct {
	mu      sync.RWMutex
	entries map[CommandCode]CommandInfo
}

var commands = newRegistry()

func newRegistry() *registry {
	r := &registry{entries: make(map[CommandCode]CommandInfo)}

	pairs := []struct {
		cmd, resp CommandCode
		name      string
	}{
		{CmdPolling, RespPolling, "Polling"},
		{CmdRequestService, RespRequestService, "Request Service"},
		{CmdRequestResponse, RespRequestResponse, "Request Response"},
		{CmdReadWithoutEncryption, RespReadWithoutEncryption, "Read Without Encryption"},
		{CmdWriteWithoutEncryption, RespWriteWithoutEncryption, "Write Without Encryption"},
		{CmdSearchServiceCode, RespSearchServiceCode, "Search Service Code"},
		{CmdRequestSystemCode, RespRequestSystemCode, "Request System Code"},
		{CmdAuthentication1, RespAuthentication1, "Authentication1"},
		{CmdAuthentication2, RespAuthentication2, "Authentication2"},
		{CmdRead, RespRead, "Read"},
		{CmdWrite, RespWrite, "Write"},
	}

	for _, p := range pairs {
		withIDm := p.cmd != CmdPolling
		r.entries[p.cmd] = CommandInfo{Code: p.cmd, Name: p.name, WithIDm: withIDm}
		r.entries[p.resp] = CommandInfo{Code: p.resp, Name: p.name + " (response)", WithIDm: true}
	}
	return r
}

func (r *registry) register(info CommandInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[info.Code]; ok {
		if existing == info {
			return nil
		}
		return fmt.Errorf("%w: 0x%02X is %q", ErrCommandConflict, byte(info.Code), existing.Name)
	}
	r.entries[info.Code] = info
	return nil
}

func (r *registry) lookup(code CommandCode) (CommandInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.entries[code]
	return info, ok
}

// RegisterCommand adds a command code to the process-wide registry.
// Registering the same code with the same description again is a no-op;
// registering it under a different description fails with ErrCommandConflict.
// Extensions must call it once at initialisation, before building frames.
func RegisterCommand(code CommandCode, name string, withIDm bool) error {
	return commands.register(CommandInfo{Code: code, Name: name, WithIDm: withIDm})
}

// LookupCommand returns the registry entry of code.
func LookupCommand(code CommandCode) (CommandInfo, bool) {
	return commands.lookup(code)
}

// RegisteredCommands returns every registered entry ordered by code.
func RegisteredCommands() []CommandInfo {
	commands.mu.RLock()
	out := make([]CommandInfo, 0, len(commands.entries))
	for _, info := range commands.entries {
		out = append(out, info)
	}
	commands.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// IsSupported checks if code is registered.
func (c CommandCode) IsSupported() bool {
	_, ok := commands.lookup(c)
	return ok
}

// IsResponse reports whether c sits on the odd (response) side of a pair.
func (c CommandCode) IsResponse() bool {
	return c&0x01 == 0x01
}

// Response returns the response code paired with command c.
func (c CommandCode) Response() CommandCode {
	return c | 0x01
}

// String returns the registered name, or the raw value for unknown codes.
func (c CommandCode) String() string {
	if info, ok := commands.lookup(c); ok {
		return info.Name
	}
	return fmt.Sprintf("CommandCode(0x%02X)", byte(c))
}

// Verbose returns a human-readable description of the code.
func (c CommandCode) Verbose() string {
	return fmt.Sprintf("Code: 0x%02X | Command: %s", byte(c), c.String())
}

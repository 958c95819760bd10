package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/felica/pkg/felica"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "felica.toml", `
[reader]
selector = "PaSoRi"
mode = "transparent"
timeout = "250ms"

[polling]
system_code = "0003"

[push]
url = "https://example.com"
legacy_zero_url_length = true
unsigned_checksum = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	want.Reader = ReaderConfig{Selector: "PaSoRi", Mode: "transparent", Timeout: Duration{250 * time.Millisecond}}
	want.Polling.SystemCode = "0003"
	want.Push.URL = "https://example.com"
	want.Push.LegacyZeroURLLength = true
	want.Push.UnsignedChecksum = true

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}

	sc, err := cfg.SystemCode()
	if err != nil || sc != felica.SystemCodeCyberne {
		t.Errorf("SystemCode() = %s, %v", sc, err)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "felica.yaml", `
reader:
  selector: "1"
polling:
  time_slot: 3
dump:
  blocks: 8
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	want.Reader.Selector = "1"
	want.Polling.TimeSlot = 3
	want.Dump.Blocks = 8
	want.Log.Level = "debug"

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"Unknown TOML Key", "c.toml", "[reader]\nport = 3\n", "unknown key"},
		{"Unknown YAML Key", "c.yml", "reader:\n  port: 3\n", "port"},
		{"Bad Mode", "c.toml", "[reader]\nmode = \"raw\"\n", "config.reader.mode"},
		{"Bad Timeout", "c.yaml", "reader:\n  timeout: soon\n", "soon"},
		{"Negative Timeout", "c.toml", "[reader]\ntimeout = \"-1s\"\n", "config.reader.timeout"},
		{"Short System Code", "c.toml", "[polling]\nsystem_code = \"FE\"\n", "config.polling.system_code"},
		{"Bad Request Code", "c.yaml", "polling:\n  request_code: 7\n", "config.polling.request_code"},
		{"Bad Time Slot", "c.yaml", "polling:\n  time_slot: 2\n", "config.polling.time_slot"},
		{"Push Without ICC", "c.toml", "[push]\nurl = \"http://a\"\nicc = \"\"\n", "config.push.icc"},
		{"Bad Log Level", "c.yaml", "log:\n  level: loud\n", "config.log.level"},
		{"Unsupported Extension", "c.json", "{}", "unsupported extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() is invalid: %v", err)
	}
	if sc, _ := cfg.SystemCode(); sc != felica.SystemCodeAny {
		t.Errorf("Default system code = %s", sc)
	}
}

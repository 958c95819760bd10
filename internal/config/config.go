// Package config loads the settings of the felica command line tool from a
// TOML or YAML file.
package config

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gregLibert/felica/internal/logging"
	"github.com/gregLibert/felica/pkg/felica"
)

// Config holds every setting of the command line tool, one section per
// concern.
type Config struct {
	Reader  ReaderConfig  `toml:"reader" yaml:"reader"`
	Polling PollingConfig `toml:"polling" yaml:"polling"`
	Dump    DumpConfig    `toml:"dump" yaml:"dump"`
	Push    PushConfig    `toml:"push" yaml:"push"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// ReaderConfig selects the PC/SC reader and how frames travel through it.
type ReaderConfig struct {
	// Selector is a reader index or a substring of its name. Empty picks
	// the first reader.
	Selector string   `toml:"selector" yaml:"selector"`
	Mode     string   `toml:"mode" yaml:"mode"`
	Timeout  Duration `toml:"timeout" yaml:"timeout"`
}

// PollingConfig is the Polling command sent to wake the card up.
type PollingConfig struct {
	SystemCode  string `toml:"system_code" yaml:"system_code"`
	RequestCode uint8  `toml:"request_code" yaml:"request_code"`
	TimeSlot    uint8  `toml:"time_slot" yaml:"time_slot"`
}

// DumpConfig bounds the block dump of readable services.
type DumpConfig struct {
	// Blocks is the number of blocks read from each readable service.
	Blocks int `toml:"blocks" yaml:"blocks"`
}

// PushConfig describes the optional intent pushed after the dump. An empty
// URL disables the push.
type PushConfig struct {
	URL                 string `toml:"url" yaml:"url"`
	ICC                 string `toml:"icc" yaml:"icc"`
	LegacyZeroURLLength bool   `toml:"legacy_zero_url_length" yaml:"legacy_zero_url_length"`
	UnsignedChecksum    bool   `toml:"unsigned_checksum" yaml:"unsigned_checksum"`
}

// LogConfig sets the log level; FELICA_LOG_LEVEL overrides it.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		Reader: ReaderConfig{
			Mode:    "direct",
			Timeout: Duration{500 * time.Millisecond},
		},
		Polling: PollingConfig{
			SystemCode:  "FFFF",
			RequestCode: byte(felica.RequestSystemCode),
			TimeSlot:    byte(felica.TimeSlot1),
		},
		Dump: DumpConfig{Blocks: 4},
		Push: PushConfig{ICC: "ANDR01"},
		Log:  LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. The decoder follows the extension:
// .toml, .yaml or .yml. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config toml: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config toml: unknown key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and reports the first invalid key.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Reader.Mode) {
	case "direct", "transparent":
	default:
		return fmt.Errorf("config.reader.mode must be direct or transparent, got %q", c.Reader.Mode)
	}
	if c.Reader.Timeout.Duration <= 0 {
		return fmt.Errorf("config.reader.timeout must be positive")
	}

	if _, err := c.SystemCode(); err != nil {
		return err
	}
	if c.Polling.RequestCode > byte(felica.RequestCommunicationPerformance) {
		return fmt.Errorf("config.polling.request_code must be 0, 1 or 2, got %d", c.Polling.RequestCode)
	}
	slots := []byte{0x00, 0x01, 0x03, 0x07, 0x0F}
	if !slices.Contains(slots, c.Polling.TimeSlot) {
		return fmt.Errorf("config.polling.time_slot must be one of 0, 1, 3, 7, 15, got %d", c.Polling.TimeSlot)
	}

	if c.Dump.Blocks < 0 || c.Dump.Blocks > 0xFFFF {
		return fmt.Errorf("config.dump.blocks out of range: %d", c.Dump.Blocks)
	}

	if c.Push.URL != "" && strings.TrimSpace(c.Push.ICC) == "" {
		return fmt.Errorf("config.push.icc is required when config.push.url is set")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config.log.level: %w", err)
	}
	return nil
}

// SystemCode parses the polling system code, written as 4 hex digits.
func (c *Config) SystemCode() (felica.SystemCode, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(c.Polling.SystemCode), "0x"))
	if err != nil {
		return felica.SystemCode{}, fmt.Errorf("config.polling.system_code: %w", err)
	}
	sc, err := felica.NewSystemCode(raw)
	if err != nil {
		return felica.SystemCode{}, fmt.Errorf("config.polling.system_code: %w", err)
	}
	return sc, nil
}

// Duration reads Go duration strings such as "500ms" from TOML and YAML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string for TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration in Go notation.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML parses a duration string for YAML.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

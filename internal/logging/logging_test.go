package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"trace", zerolog.TraceLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{" warn ", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"off", zerolog.Disabled, false},
		{"loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "felica", zerolog.InfoLevel, false)

	logger.Debug().Msg("hidden")
	logger.Info().Str("idm", "012E4CF123456789").Msg("card found")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug message written at info level:\n%s", out)
	}
	for _, want := range []string{"card found", "app=felica", "idm=012E4CF123456789"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Colour escape codes written with colour off:\n%s", out)
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	logger, err := New("felica", "debug")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := logger.GetLevel(); got != zerolog.ErrorLevel {
		t.Errorf("Level = %s, want error", got)
	}

	t.Setenv(EnvLevel, "shout")
	if _, err := New("felica", "info"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}

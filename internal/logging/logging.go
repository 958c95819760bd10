// Package logging builds the zerolog loggers used by the command line tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Environment overrides.
const (
	EnvLevel   = "FELICA_LOG_LEVEL"
	EnvNoColor = "FELICA_LOG_NOCOLOR"
)

var globalOnce sync.Once

// ParseLevel reads trace, debug, info, warn, error or off. An empty string
// means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return zerolog.InfoLevel, nil
	case "off", "none", "disabled":
		return zerolog.Disabled, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// New returns the console logger of app on stderr. level comes from the
// configuration; FELICA_LOG_LEVEL overrides it. Colours are off when stderr
// is not a terminal or FELICA_LOG_NOCOLOR is set.
//
// The first logger built also becomes the zerolog global logger.
func New(app, level string) (zerolog.Logger, error) {
	if env, ok := os.LookupEnv(EnvLevel); ok && env != "" {
		level = env
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	_, noColor := os.LookupEnv(EnvNoColor)
	logger := NewWithWriter(os.Stderr, app, lvl, !noColor && isTerminal(os.Stderr))

	globalOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		log.Logger = logger
	})
	return logger, nil
}

// NewWithWriter builds a console logger writing to w.
func NewWithWriter(w io.Writer, app string, lvl zerolog.Level, color bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Package logger configures zerolog for the studentrecords binaries and adapts
// it to the key/value logging interface used by the service layer.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level names accepted by Config.Level.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Config represents logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Pretty enables the human-readable console writer.
	Pretty bool
	// Output defaults to os.Stderr so command output on stdout stays clean.
	Output io.Writer
}

// New builds a zerolog.Logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name onto zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel, "warning":
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Adapter exposes a zerolog.Logger through Debug/Info/Warn/Error methods
// taking a message and alternating key/value pairs.
type Adapter struct {
	log zerolog.Logger
}

// NewAdapter wraps l.
func NewAdapter(l zerolog.Logger) *Adapter {
	return &Adapter{log: l}
}

// Debug logs at debug level.
func (a *Adapter) Debug(msg string, kv ...any) { emit(a.log.Debug(), msg, kv) }

// Info logs at info level.
func (a *Adapter) Info(msg string, kv ...any) { emit(a.log.Info(), msg, kv) }

// Warn logs at warn level.
func (a *Adapter) Warn(msg string, kv ...any) { emit(a.log.Warn(), msg, kv) }

// Error logs at error level.
func (a *Adapter) Error(msg string, kv ...any) { emit(a.log.Error(), msg, kv) }

func emit(ev *zerolog.Event, msg string, kv []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			ev = ev.Str("!BADKEY", key)
			break
		}
		switch v := kv[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

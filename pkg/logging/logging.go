package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelOff is above every level slog emits. A logger at LevelOff is silent.
const LevelOff = slog.LevelError + 4

// Format names a record encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
	"off":     LevelOff,
}

// Config selects the handler built by New. The zero value logs info and
// above as text to stderr.
type Config struct {
	Level  slog.Level
	Format Format
	Output io.Writer
}

// New builds a logger for cfg. Level LevelOff yields Nop().
func New(cfg Config) *slog.Logger {
	if cfg.Level >= LevelOff {
		return Nop()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// FromFlags builds a logger writing to w from the --log-level and
// --log-format values. Empty values take the defaults.
func FromFlags(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return New(Config{Level: lvl, Format: f, Output: w}), nil
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForServer tags every record of base with the mock server's base URL.
func ForServer(base *slog.Logger, baseURL string) *slog.Logger {
	return base.With(slog.String("mock", baseURL))
}

// ParseLevel maps debug, info, warn (or warning), error and off to a level,
// ignoring case. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	if lvl, ok := levelNames[strings.ToLower(s)]; ok {
		return lvl, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w %q: want debug, info, warn, error or off", ErrUnknownLevel, s)
}

// ParseFormat maps text or json to a Format, ignoring case. The empty string
// is text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("%w %q: want text or json", ErrUnknownFormat, s)
}

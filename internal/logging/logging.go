// Package logging builds the zap loggers used by the CLI.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity selects the minimum level written.
type Verbosity int

const (
	Normal  Verbosity = iota // info and above
	Quiet                    // warnings and errors
	Verbose                  // debug and above
)

// Level returns the zap level for v.
func (v Verbosity) Level() zapcore.Level {
	switch v {
	case Quiet:
		return zapcore.WarnLevel
	case Verbose:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// New returns a console logger writing to w without timestamps.
// Info lines are written bare so build output reads like plain text.
func New(w io.Writer, v Verbosity) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		NameKey:          "logger",
		EncodeLevel:      encodeLevel,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	})
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), v.Level())
	return zap.New(core)
}

// FromFlags maps the -q and -v flags to a Verbosity. Verbose wins.
func FromFlags(quiet, verbose bool) Verbosity {
	switch {
	case verbose:
		return Verbose
	case quiet:
		return Quiet
	default:
		return Normal
	}
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == zapcore.InfoLevel {
		return
	}
	enc.AppendString(l.CapitalString() + ":")
}

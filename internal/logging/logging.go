// Package logging builds the structured logger shared by deflake commands.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing JSON lines to w. Only warnings and errors are
// written unless debug is set, which lowers the level to Debug.
func New(w io.Writer, debug bool) *zap.Logger {
	level := zapcore.WarnLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	sink := zapcore.AddSync(w)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.ErrorOutput(sink), zap.AddCaller())
}

// OrNop returns l, or a no-op logger if l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

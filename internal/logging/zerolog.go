package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts rs/zerolog to the Logger interface. Use this backend
// for long-running deployments where log level filtering matters; the
// StdoutLogger stays the default for development.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger creates a zerolog-backed Logger writing to w. If w is nil,
// stderr is used. component is attached as a persistent field.
func NewZerologLogger(w io.Writer, component string, level zerolog.Level) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if component != "" {
		zl = zl.With().Str("component", component).Logger()
	}
	return &ZerologLogger{zl: zl}
}

func (z *ZerologLogger) emit(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func (z *ZerologLogger) Debug(msg string, fields ...Field) { z.emit(z.zl.Debug(), msg, fields) }

func (z *ZerologLogger) Info(msg string, fields ...Field) { z.emit(z.zl.Info(), msg, fields) }

func (z *ZerologLogger) Warn(msg string, fields ...Field) { z.emit(z.zl.Warn(), msg, fields) }

func (z *ZerologLogger) Error(msg string, fields ...Field) { z.emit(z.zl.Error(), msg, fields) }

func (z *ZerologLogger) With(fields ...Field) Logger {
	ctx := z.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

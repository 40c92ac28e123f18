// Package logging builds the zap logger used for diagnostics. Diagnostics go
// to stderr so scan output on stdout stays machine-readable.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Verbose enables debug level.
	Verbose bool
	// Quiet raises the level to error, hiding warnings.
	Quiet bool
	// Format is "console" (default) or "json".
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger writing to opts.Output.
func New(opts Options) *zap.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := zapcore.InfoLevel
	switch {
	case opts.Verbose:
		level = zapcore.DebugLevel
	case opts.Quiet:
		level = zapcore.ErrorLevel
	}
	core := zapcore.NewCore(newEncoder(opts.Format), zapcore.Lock(zapcore.AddSync(out)), level)
	return zap.New(core)
}

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "json" {
		return zapcore.NewJSONEncoder(encoderCfg)
	}
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encoderCfg)
}

// Package logging builds the zap logger used for diagnostics.
//
// Diagnostics go to stderr and are separate from the user-facing report,
// which is always plain text (or JSON) on stdout.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// New returns a logger writing to w. Verbose selects the development
// encoder at debug level; otherwise only warnings and errors are logged.
// Level colours are used only when w is a terminal.
func New(verbose bool, w zapcore.WriteSyncer) *zap.Logger {
	var encCfg zapcore.EncoderConfig
	level := zapcore.WarnLevel

	if verbose {
		encCfg = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
		if isTerminal(w) {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), w, level)
	return zap.New(core, zap.Fields(zap.String("appName", "sqlfluff-check")))
}

// isTerminal reports whether w is an *os.File attached to a terminal.
func isTerminal(w zapcore.WriteSyncer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

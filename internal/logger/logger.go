// Package logger provides structured logging using Zap.
package logger

import (
	"go.uber.org/zap"
)

// New builds a logger for the given environment. For "production", it uses
// a JSON encoder. For all other environments, it uses a human-readable
// console encoder. Both write to stderr so stdout stays free for results.
func New(env string) *zap.Logger {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	base, err := cfg.Build()
	if err != nil {
		// Fallback to nop logger if initialization fails.
		return zap.NewNop()
	}
	return base
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync(l *zap.Logger) {
	if l != nil {
		_ = l.Sync()
	}
}

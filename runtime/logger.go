package runtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-host/engine"
	"github.com/wippyai/wasm-host/invoke"
	"github.com/wippyai/wasm-host/linker"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the runtime's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the logger of the runtime and of every package it
// drives.
func SetLogger(l *zap.Logger) {
	logger = l
	engine.SetLogger(l.Named("engine"))
	linker.SetLogger(l.Named("linker"))
	invoke.SetLogger(l.Named("invoke"))
}

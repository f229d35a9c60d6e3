package linker

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the logger Resolve reports to. Imports bound despite a
// layout or signature difference, or left to trap stubs, are warnings.
// Resolved imports are logged at debug level. It is a no-op logger until
// SetLogger is called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the resolution logger. A nil logger silences it.
// Call it before resolving, it is not synchronized with Resolve.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

package logger

import (
	"os"
	"sync"
)

// Log levels accepted in config.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings accepted in config.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options select the level and encoding of the process logger.
type Options struct {
	Level  string
	Format string
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger writing to stdout. The first call
// fixes the options; later calls ignore them.
func Get(opts Options) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(opts, os.Stdout)
	})
	return globalLogger
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zapNop()}
}

// With returns a child logger carrying the given key-value pairs.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(kv...)}
}

// Package logging wraps zerolog with context-scoped loggers so every log
// line from a request or background job carries its correlation/request id
// without handlers having to thread a logger argument everywhere.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger zerolog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Config controls how the global logger is constructed.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Caller bool
}

// Init (re)configures the global logger. Call once at startup after config load.
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(w).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}

	mu.Lock()
	logger = ctx.Logger()
	mu.Unlock()
}

// Logger returns the current global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns a zerolog.Context seeded from the global logger.
func With() zerolog.Context {
	return Logger().With()
}

func Debug() *zerolog.Event { return Logger().Debug() }
func Info() *zerolog.Event  { return Logger().Info() }
func Warn() *zerolog.Event  { return Logger().Warn() }
func Error() *zerolog.Event { return Logger().Error() }
func Fatal() *zerolog.Event { return Logger().Fatal() }

// WithComponent returns a child logger tagged with a component name, used by
// long-running subsystems (scheduler, wsbroker, sync) to identify their lines.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

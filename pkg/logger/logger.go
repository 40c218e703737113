package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Leveled logger used across the service.
// - printf-style Debugf/Infof/Warnf/Errorf/Fatalf for startup and plumbing code
// - Component(name) for structured zerolog loggers in request paths

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	s := strings.ToLower(strings.TrimSpace(l))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel || lvl < zerolog.DebugLevel || lvl > zerolog.FatalLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// SetOutput replaces the destination of every logger created afterwards.
// With pretty=true output is human readable (used when DEBUG is on).
func SetOutput(w io.Writer, pretty bool) {
	mu.Lock()
	defer mu.Unlock()
	if pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	logger = zerolog.New(w).With().Timestamp().Logger()
}

func base() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// Component returns a structured logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return base().With().Str("component", name).Logger()
}

func Debugf(format string, v ...interface{}) { base().Debug().Msgf(format, v...) }
func Infof(format string, v ...interface{})  { base().Info().Msgf(format, v...) }
func Warnf(format string, v ...interface{})  { base().Warn().Msgf(format, v...) }
func Errorf(format string, v ...interface{}) { base().Error().Msgf(format, v...) }

func Fatalf(format string, v ...interface{}) {
	base().WithLevel(zerolog.FatalLevel).Msgf(format, v...)
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	base().Info().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Info logs v verbatim; verbs in v are not expanded.
func Info(v string) { base().Info().Msg(v) }

// LevelString returns the current level as text.
func LevelString() string {
	return zerolog.GlobalLevel().String()
}

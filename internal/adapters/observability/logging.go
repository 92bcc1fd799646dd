package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the service logger. APP_ENV=dev (or development)
// switches to a console writer and debug level; level, when it parses,
// overrides the default.
func NewLogger(env, level string) zerolog.Logger {
	return newLogger(os.Stdout, env, level)
}

func newLogger(out io.Writer, env, level string) zerolog.Logger {
	dev := env == "dev" || env == "development"
	lvl := zerolog.InfoLevel
	if dev {
		lvl = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if l, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = l
	}
	return zerolog.New(out).Level(lvl).With().
		Timestamp().
		Str("service", "hotelbook").
		Logger()
}

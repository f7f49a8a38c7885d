// Package logging builds the zerolog loggers shared by the API and worker binaries.
//
// Output keeps the field names used by the request and migration logs:
// ts, level, msg, component, event, status, duration_ms.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"casefiles/internal/config"
)

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true
}

// New returns a logger writing to stdout.
func New(cfg config.LogConfig, loc *time.Location) zerolog.Logger {
	return NewWithWriter(os.Stdout, cfg, loc)
}

// NewWithWriter returns a logger writing to w. Format "console" switches to
// human-readable output; anything else produces JSON lines.
func NewWithWriter(w io.Writer, cfg config.LogConfig, loc *time.Location) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	if loc == nil {
		loc = time.UTC
	}

	return zerolog.New(w).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger().
		Hook(locationHook{loc: loc})
}

// Component returns a child logger tagged with the given component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// locationHook stamps the configured local time next to the UTC timestamp.
type locationHook struct {
	loc *time.Location
}

func (h locationHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if h.loc != time.UTC {
		e.Str("local_ts", time.Now().In(h.loc).Format(time.RFC3339))
	}
}

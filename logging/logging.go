package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const timeFormat = "2006-01-02T15:04:05.000"

// Setup installs the global logger. Unknown levels fall back to info, `console` selects human-readable output.
func Setup(w io.Writer, level string, format string) {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
	}

	log.Logger = zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Caller().Logger()
}

func ParseLevel(level string) zerolog.Level {
	normalised := strings.ToLower(strings.TrimSpace(level))
	if normalised == "warning" {
		normalised = "warn"
	}

	lvl, err := zerolog.ParseLevel(normalised)
	if err != nil || normalised == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevelFromString parses a zerolog level and falls back to info on garbage input.
func LogLevelFromString(s string) zerolog.Level {
	l, err := zerolog.ParseLevel(s)
	if err != nil || l == zerolog.NoLevel {
		log.Error().Err(err).Str("level", s).Msgf("Failed to parse log level, defaulting to %s", zerolog.InfoLevel)
		return zerolog.InfoLevel
	}

	return l
}

// SetupLogger configures the global zerolog logger. Logs always go to stderr so that
// command output on stdout stays machine readable.
func SetupLogger(level zerolog.Level, prettyPrintConsole bool) {
	SetupLoggerWithOutput(os.Stderr, level, prettyPrintConsole)
}

func SetupLoggerWithOutput(out io.Writer, level zerolog.Level, prettyPrintConsole bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(level)

	if prettyPrintConsole {
		log.Logger = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.TimeFormat = "15:04:05"
		})).With().Timestamp().Logger()
		return
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

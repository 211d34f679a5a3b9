package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configures the global zerolog logger from LOG_LEVEL,
// LOG_FORMAT ("json" or "console") and LOG_CALLER
func SetupLogger(cfg *Config) zerolog.Logger {
	return setupLogger(cfg, os.Stderr)
}

func setupLogger(cfg *Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.GetWithDefault("LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(cfg.Get("LOG_FORMAT"), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.GetBool("LOG_CALLER") {
		ctx = ctx.Caller()
	}

	log.Logger = ctx.Logger()
	return log.Logger
}

// Component returns a child of the global logger tagged with a module name
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("module", name).Logger()
}

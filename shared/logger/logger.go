// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"aspen/config"
	"aspen/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger starts with a human-readable console writer at trace level.
// SetLogLevel narrows it once the configuration is known.
func InitLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// SetLogLevel applies SERVER_LOG_LEVEL and switches to JSON lines outside
// development, tagging every entry with the application name.
func SetLogLevel(config *config.Config) {
	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil || config.Server.LogLevel == constant.Empty {
		level = zerolog.InfoLevel
		log.Info().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	}

	zerolog.SetGlobalLevel(level)

	log.Logger = New(os.Stdout, config)
	log.Debug().Str("loglevel", level.String()).Str("env", config.Server.Env).Msg("Logger configured.")
}

// New builds a logger writing to out in the format the environment calls for.
func New(out io.Writer, config *config.Config) zerolog.Logger {
	writer := out
	if config.Server.Env == constant.Empty || config.Server.Env == constant.ServerEnvDevelopment {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(writer).With().Timestamp()
	if config.App.Name != constant.Empty {
		ctx = ctx.Str("app", config.App.Name)
	}

	return ctx.Logger()
}

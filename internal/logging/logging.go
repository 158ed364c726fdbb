// Package logging provides structured logging for the strategy analytics
// application.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"options-strategist/internal/config"
)

// New creates a logger from the application logging configuration: a console
// writer, an optional lumberjack-rotated file writer, or both.
func New(cfg config.LoggingConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stderr
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithModel adds the theoretical model name to the logger context.
func WithModel(logger zerolog.Logger, model string) zerolog.Logger {
	return logger.With().Str("model", model).Logger()
}

// LogEvaluation logs the outcome of one strategy evaluation.
func LogEvaluation(logger zerolog.Logger, legs int, pop, cost float64, duration time.Duration) {
	logger.Info().
		Str("event", "evaluation").
		Int("legs", legs).
		Float64("probability_of_profit", pop).
		Float64("strategy_cost", cost).
		Dur("duration", duration).
		Msg("Strategy evaluated")
}

// LogCalendarFallback logs a holiday calendar falling back to the default
// country.
func LogCalendarFallback(logger zerolog.Logger, requested, used string) {
	logger.Warn().
		Str("event", "calendar_fallback").
		Str("requested", requested).
		Str("used", used).
		Msg("Unsupported holiday calendar, using default")
}

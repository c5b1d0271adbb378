package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
}

// Fields represents log fields
type Fields map[string]interface{}

// Default is the process-wide logger. It is created on first use when Init was not called.
var Default *Logger

// Init configures the default logger from LOG_LEVEL, LOG_FORMAT and AGENT_ENVIRONMENT.
// Production and LOG_FORMAT=json write JSON lines to stderr; otherwise a console writer is used.
func Init() {
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	if jsonOutput() {
		out = os.Stderr
	}
	InitWithWriter(out, getLogLevel())
}

// InitWithWriter points the default logger at out
func InitWithWriter(out io.Writer, level zerolog.Level) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	Default = &Logger{logger: zerolog.New(out).With().Timestamp().Logger()}
	Default.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}

func production() bool {
	return os.Getenv("AGENT_ENVIRONMENT") == "production"
}

func jsonOutput() bool {
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		return strings.EqualFold(format, "json")
	}
	return production()
}

// getLogLevel returns the log level from environment variable
func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if production() {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithFields creates a new logger with fields
func (l *Logger) WithFields(fields Fields) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger()}
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }

func defaultLogger() *Logger {
	if Default == nil {
		Init()
	}
	return Default
}

// Debug logs a printf-style debug message
func Debug(format string, v ...interface{}) {
	defaultLogger().Debug().Msgf(format, v...)
}

// Info logs a printf-style info message
func Info(format string, v ...interface{}) {
	defaultLogger().Info().Msgf(format, v...)
}

// Warn logs a printf-style warning
func Warn(format string, v ...interface{}) {
	defaultLogger().Warn().Msgf(format, v...)
}

// Error logs a printf-style error
func Error(format string, v ...interface{}) {
	defaultLogger().Error().Msgf(format, v...)
}

// ForComponent creates a logger tagged with a component name
func ForComponent(component string) *Logger {
	return defaultLogger().WithField("component", component)
}

// ForDiscovery creates a logger for category discovery
func ForDiscovery(category string) *Logger {
	return ForComponent("discovery").WithField("category", category)
}

func ForExtractor() *Logger {
	return ForComponent("extractor")
}

func ForRenderer(backend string) *Logger {
	return ForComponent("renderer").WithField("backend", backend)
}

func ForWorker() *Logger {
	return ForComponent("worker")
}

func ForPublisher() *Logger {
	return ForComponent("publisher")
}

func ForArchive() *Logger {
	return ForComponent("archive")
}

// LogError logs err for a component with a formatted message
func LogError(component string, err error, format string, v ...interface{}) {
	defaultLogger().Error().
		Str("component", component).
		Err(err).
		Msg(fmt.Sprintf(format, v...))
}

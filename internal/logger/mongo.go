package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// NewMongoLogger creates a console logger dedicated to MongoDB command
// output. It is only used in the local environment where every command is
// printed, so readability wins over machine parsing.
func NewMongoLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05.000",
	}).
		Level(level).
		With().
		Timestamp().
		Str("component", "mongo").
		Logger()
}

// GetMongoCommandLogLevel returns the level at which successful commands are
// logged for the given global level. Commands are logged at debug unless the
// global level asks for warnings or worse, in which case they are disabled.
func GetMongoCommandLogLevel(global zerolog.Level) zerolog.Level {
	switch global {
	case zerolog.TraceLevel, zerolog.DebugLevel, zerolog.InfoLevel:
		return zerolog.DebugLevel
	default:
		return zerolog.Disabled
	}
}

// Package logger defines the logging surface shared by every coinalert component.
package logger

// Level is a backend independent severity
type Level int8

const (
	Disabled Level = iota - 1
	TraceLevel
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	PanicLevel
	NoLevel
)

// Logger is the structured logger handed to the bot, the scheduler, the command handlers
// and the chat transport. Context goes into fields, never into the message text.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger

	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)

	SetLevel(level Level)
	GetLevel() Level
}

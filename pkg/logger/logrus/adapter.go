// Package logrus adapts github.com/sirupsen/logrus to logger.Logger.
package logrus

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/raykavin/coinalert/pkg/logger"
)

type LogrusAdapter struct {
	*logrus.Entry
}

var _ logger.Logger = (*LogrusAdapter)(nil)

// New creates a logrus backed logger writing to out
func New(out io.Writer, level, dateTimeLayout string, jsonFormat bool) (*LogrusAdapter, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: dateTimeLayout})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: dateTimeLayout})
	}

	return NewAdapter(logrus.NewEntry(log)), nil
}

func NewAdapter(entry *logrus.Entry) *LogrusAdapter {
	return &LogrusAdapter{entry}
}

// WithField implements logger.Logger.
func (l *LogrusAdapter) WithField(key string, value any) logger.Logger {
	return &LogrusAdapter{l.Entry.WithField(key, value)}
}

// WithFields implements logger.Logger.
func (l *LogrusAdapter) WithFields(fields map[string]any) logger.Logger {
	return &LogrusAdapter{l.Entry.WithFields(fields)}
}

// WithError implements logger.Logger.
func (l *LogrusAdapter) WithError(err error) logger.Logger {
	return &LogrusAdapter{l.Entry.WithError(err)}
}

// SetLevel implements logger.Logger.
func (l *LogrusAdapter) SetLevel(level logger.Level) {
	l.Logger.SetLevel(toLogrusLevel(level))
}

// GetLevel implements logger.Logger.
func (l *LogrusAdapter) GetLevel() logger.Level {
	switch l.Logger.GetLevel() {
	case logrus.TraceLevel:
		return logger.TraceLevel
	case logrus.DebugLevel:
		return logger.DebugLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	case logrus.ErrorLevel:
		return logger.ErrorLevel
	case logrus.FatalLevel:
		return logger.FatalLevel
	case logrus.PanicLevel:
		return logger.PanicLevel
	}
	return logger.NoLevel
}

func toLogrusLevel(level logger.Level) logrus.Level {
	switch level {
	case logger.TraceLevel:
		return logrus.TraceLevel
	case logger.DebugLevel:
		return logrus.DebugLevel
	case logger.WarnLevel:
		return logrus.WarnLevel
	case logger.ErrorLevel:
		return logrus.ErrorLevel
	case logger.FatalLevel:
		return logrus.FatalLevel
	case logger.PanicLevel, logger.Disabled:
		return logrus.PanicLevel
	}
	return logrus.InfoLevel
}

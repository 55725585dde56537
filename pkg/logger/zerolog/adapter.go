package zerolog

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/raykavin/coinalert/pkg/logger"
)

// ZerologAdapter exposes a zerolog.Logger through logger.Logger
type ZerologAdapter struct {
	*zerolog.Logger
}

var _ logger.Logger = (*ZerologAdapter)(nil)

func NewAdapter(log *zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{log}
}

// levels pairs every logger.Level with its zerolog counterpart
var levels = []struct {
	level   logger.Level
	zerolog zerolog.Level
}{
	{logger.Disabled, zerolog.Disabled},
	{logger.TraceLevel, zerolog.TraceLevel},
	{logger.DebugLevel, zerolog.DebugLevel},
	{logger.InfoLevel, zerolog.InfoLevel},
	{logger.WarnLevel, zerolog.WarnLevel},
	{logger.ErrorLevel, zerolog.ErrorLevel},
	{logger.FatalLevel, zerolog.FatalLevel},
	{logger.PanicLevel, zerolog.PanicLevel},
}

func toLevel(level zerolog.Level) logger.Level {
	for _, l := range levels {
		if l.zerolog == level {
			return l.level
		}
	}
	return logger.NoLevel
}

func toZerologLevel(level logger.Level) zerolog.Level {
	for _, l := range levels {
		if l.level == level {
			return l.zerolog
		}
	}
	return zerolog.NoLevel
}

// GetLevel reports the level of the wrapped logger
func (z *ZerologAdapter) GetLevel() logger.Level {
	return toLevel(z.Logger.GetLevel())
}

// SetLevel changes the global zerolog level, which every derived logger shares
func (z *ZerologAdapter) SetLevel(level logger.Level) {
	zerolog.SetGlobalLevel(toZerologLevel(level))
}

func (z *ZerologAdapter) Debug(args ...any) {
	z.Logger.Debug().Msg(fmt.Sprint(args...))
}

func (z *ZerologAdapter) Info(args ...any) {
	z.Logger.Info().Msg(fmt.Sprint(args...))
}

func (z *ZerologAdapter) Warn(args ...any) {
	z.Logger.Warn().Msg(fmt.Sprint(args...))
}

func (z *ZerologAdapter) Error(args ...any) {
	z.Logger.Error().Msg(fmt.Sprint(args...))
}

// WithError attaches err under the "error" key
func (z *ZerologAdapter) WithError(err error) logger.Logger {
	child := z.With().Err(err).Logger()
	return &ZerologAdapter{&child}
}

func (z *ZerologAdapter) WithField(key string, value any) logger.Logger {
	child := z.With().Interface(key, value).Logger()
	return &ZerologAdapter{&child}
}

func (z *ZerologAdapter) WithFields(fields map[string]any) logger.Logger {
	child := z.With().Fields(fields).Logger()
	return &ZerologAdapter{&child}
}

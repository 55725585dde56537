// Package zerolog builds the default console logger on top of github.com/rs/zerolog.
package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

type Logger struct {
	*zerolog.Logger
}

// New creates a logger writing to stdout. jsonFormat disables the console writer entirely.
func New(level, dateTimeLayout string, colored, jsonFormat bool) (*Logger, error) {
	return NewWithWriter(os.Stdout, level, dateTimeLayout, colored, jsonFormat)
}

// NewWithWriter creates a logger writing to out
func NewWithWriter(out io.Writer, level, dateTimeLayout string, colored, jsonFormat bool) (*Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logMode, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zerolog.SetGlobalLevel(logMode)

	if jsonFormat {
		zerolog.TimeFieldFormat = time.RFC3339
		logger := zerolog.New(out).With().Timestamp().Caller().Logger()
		return &Logger{&logger}, nil
	}

	output := zerolog.ConsoleWriter{
		Out:             out,
		NoColor:         !colored,
		TimeFormat:      dateTimeLayout,
		FormatLevel:     formatLevel,
		FormatMessage:   formatMessage,
		FormatCaller:    formatCaller,
		FormatTimestamp: func(i interface{}) string { return formatTimestamp(i, dateTimeLayout) },
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &Logger{&logger}, nil
}

func formatLevel(i interface{}) string {
	levelStr, ok := i.(string)
	if !ok {
		return "UNKNOWN"
	}

	return getLevelColor(levelStr)
}

func getLevelColor(level string) string {
	switch level {
	case zerolog.LevelTraceValue:
		return term.Cyanf("[TRC]")
	case zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelPanicValue:
		return term.Redf("[PAN]")
	case zerolog.LevelFatalValue:
		return term.Redf("[FTL]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	default:
		return term.Whitef("[UNK]")
	}
}

func formatMessage(i interface{}) string {
	const maxSize = 60

	msg, ok := i.(string)
	if !ok || len(msg) == 0 {
		return ">"
	}

	// pad short messages so the fields line up
	if runes := []rune(msg); len(runes) < maxSize {
		msg += strings.Repeat(" ", maxSize-len(runes))
	}

	return term.Whitef("> %s", msg)
}

func formatCaller(i interface{}) string {
	const maxFileSize = 18
	const maxLineSize = 4

	fname, ok := i.(string)
	if !ok || len(fname) == 0 {
		return ""
	}

	caller := filepath.Base(fname)
	callerSplit := strings.Split(caller, ":")
	if len(callerSplit) != 2 {
		return caller
	}

	fileBase := callerSplit[0]
	line := callerSplit[1]

	if len(fileBase) > maxFileSize {
		fileBase = fileBase[:maxFileSize]
	} else {
		fileBase = fmt.Sprintf("%-*s", maxFileSize, fileBase)
	}

	if len(line) > maxLineSize {
		line = line[len(line)-maxLineSize:]
	} else {
		line = fmt.Sprintf("%*s", maxLineSize, line)
	}

	return term.Yellowf("[%s:%s]", fileBase, line)
}

func formatTimestamp(i interface{}, timeLayout string) string {
	strTime, ok := i.(string)
	if !ok {
		return term.Cyanf("[%s]", i)
	}

	if ts, err := time.ParseInLocation(time.RFC3339, strTime, time.Local); err == nil {
		strTime = ts.In(time.Local).Format(timeLayout)
	}

	return term.Cyanf("[%s]", strTime)
}

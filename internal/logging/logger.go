package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Options select where log entries go.
type Options struct {
	// Verbosity is the -v count: 0 errors only, 1 info, 2+ debug.
	Verbosity int
	Console   io.Writer
	NoColor   bool

	File       string // empty disables the file hook
	FileLevel  string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// writerHook formats entries at or above its level onto one writer.
type writerHook struct {
	out       io.Writer
	formatter logrus.Formatter
	level     logrus.Level
}

func (h *writerHook) Levels() []logrus.Level {
	return logrus.AllLevels[:h.level+1]
}

func (h *writerHook) Fire(e *logrus.Entry) error {
	line, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}

// ConsoleLevel maps the -v count to a level.
func ConsoleLevel(verbosity int) logrus.Level {
	switch {
	case verbosity <= 0:
		return logrus.ErrorLevel
	case verbosity == 1:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// SetupLogger builds a logger that writes human-readable text to the console
// and rotated JSON to a log file.
func SetupLogger(opts Options) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleLevel := ConsoleLevel(opts.Verbosity)
	logger.AddHook(&writerHook{
		out: console,
		formatter: &logrus.TextFormatter{
			DisableTimestamp: true,
			DisableColors:    opts.NoColor,
		},
		level: consoleLevel,
	})

	maxLevel := consoleLevel
	if opts.File != "" {
		fileLevel, err := logrus.ParseLevel(strings.ToLower(opts.FileLevel))
		if err != nil {
			fileLevel = logrus.InfoLevel
		}
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			logger.WithError(err).Warn("log file disabled")
		} else {
			logger.AddHook(&writerHook{
				out: &lumberjack.Logger{
					Filename:   opts.File,
					MaxSize:    opts.MaxSizeMB,
					MaxBackups: opts.MaxBackups,
					MaxAge:     opts.MaxAgeDays,
				},
				formatter: &logrus.JSONFormatter{},
				level:     fileLevel,
			})
			if fileLevel > maxLevel {
				maxLevel = fileLevel
			}
		}
	}

	// The logger level gates what reaches the hooks at all.
	logger.SetLevel(maxLevel)
	return logger
}

// Discard returns a logger that drops everything, for tests and library use.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// pkg/log/log.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package log wraps log/slog with the severities the control core's
// components log at: info, notice, warning, and error. Notice sits
// between info and warning (acknowledgements, applied guidance
// entries) and is declared as a custom slog.Level the way the stdlib
// documents extending the built-in levels.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelNotice sits between slog.LevelInfo (0) and slog.LevelWarn (4).
const LevelNotice = slog.Level(2)

// Severity is the closed set of severities the core logs at; it maps
// directly onto the context.logSeverity field the external interfaces
// carry (see §6 of the specification).
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityNotice  Severity = "notice"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Logger struct {
	*slog.Logger
	LogFile string
	Start   time.Time
}

// New creates a Logger that writes JSON-formatted records through a
// rotating lumberjack writer. dir defaults to a per-user config
// directory when empty.
func New(level string, dir string) *Logger {
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to find user config dir: %v", err)
			dir = "."
		}
		dir = filepath.Join(dir, "Apollo64")
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "apollo64.slog"),
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if level == "debug" {
		w.MaxSize = 512
	}

	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "notice":
		lvl = LevelNotice
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		if level != "" {
			fmt.Fprintf(os.Stderr, "%s: invalid log level\n", level)
		}
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lev, ok := a.Value.Any().(slog.Level); ok && lev == LevelNotice {
					a.Value = slog.StringValue("NOTICE")
				}
			}
			return a
		},
	})
	l := &Logger{
		Logger:  slog.New(h),
		LogFile: w.Filename,
		Start:   time.Now(),
	}

	l.Info("Hello logging", slog.Time("start", time.Now()))
	if bi, ok := debug.ReadBuildInfo(); ok {
		l.Info("Build",
			slog.String("Go version", bi.GoVersion),
			slog.String("GOARCH", runtime.GOARCH),
			slog.String("GOOS", runtime.GOOS))
	}

	return l
}

// NewDiscard returns a Logger that drops everything; useful for tests
// that don't want to assert on log output.
func NewDiscard() *Logger {
	h := slog.NewJSONHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return &Logger{Logger: slog.New(h), Start: time.Now()}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Log dispatches to the matching severity-specific method; it mirrors
// the Logger(getSeconds, message, context) external interface from §6,
// with getSeconds recorded as a "get_seconds" attribute.
func (l *Logger) Log(severity Severity, getSeconds float64, msg string, args ...any) {
	args = append([]any{slog.Float64("get_seconds", getSeconds)}, args...)
	switch severity {
	case SeverityNotice:
		l.Notice(msg, args...)
	case SeverityWarning:
		l.Warn(msg, args...)
	case SeverityError:
		l.Error(msg, args...)
	default:
		l.Info(msg, args...)
	}
}

// Debug wraps slog.Debug to add call stack information (and similarly
// for the following Logger methods). We do not wrap the entire slog
// logging interface, so, for example, WarnContext and the embedded
// slog.Logger's own Log do not have callstacks included. This
// package's Log method routes through the wrappers below, so its
// records do carry one.
//
// We also wrap the logging methods to allow a nil *Logger, in which
// case debug/info/notice messages are discarded (though warnings and
// errors still go through to slog.)
func (l *Logger) Debug(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, slog.LevelDebug) {
		args = append([]any{slog.Any("callstack", Callstack(nil))}, args...)
		l.Logger.Debug(msg, args...)
	}
}

func (l *Logger) Debugf(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, slog.LevelDebug) {
		l.Logger.Debug(fmt.Sprintf(msg, args...), slog.Any("callstack", Callstack(nil)))
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, slog.LevelInfo) {
		args = append([]any{slog.Any("callstack", Callstack(nil))}, args...)
		l.Logger.Info(msg, args...)
	}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...), slog.Any("callstack", Callstack(nil)))
	}
}

func (l *Logger) Notice(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, LevelNotice) {
		args = append([]any{slog.Any("callstack", Callstack(nil))}, args...)
		l.Logger.Log(nil, LevelNotice, msg, args...)
	}
}

func (l *Logger) Noticef(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, LevelNotice) {
		l.Logger.Log(nil, LevelNotice, fmt.Sprintf(msg, args...), slog.Any("callstack", Callstack(nil)))
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	args = append([]any{slog.Any("callstack", Callstack(nil))}, args...)
	if l == nil {
		slog.Warn(msg, args...)
	} else {
		l.Logger.Warn(msg, args...)
	}
}

func (l *Logger) Warnf(msg string, args ...any) {
	if l == nil {
		slog.Warn(fmt.Sprintf(msg, args...), slog.Any("callstack", Callstack(nil)))
	} else {
		l.Logger.Warn(fmt.Sprintf(msg, args...), slog.Any("callstack", Callstack(nil)))
	}
}

func (l *Logger) Error(msg string, args ...any) {
	args = append([]any{slog.Any("callstack", Callstack(nil))}, args...)
	if l == nil {
		slog.Error(msg, args...)
	} else {
		l.Logger.Error(msg, args...)
	}
}

func (l *Logger) Errorf(msg string, args ...any) {
	if l == nil {
		slog.Error(fmt.Sprintf(msg, args...), slog.Any("callstack", Callstack(nil)))
	} else {
		l.Logger.Error(fmt.Sprintf(msg, args...), slog.Any("callstack", Callstack(nil)))
	}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:  l.Logger.With(args...),
		LogFile: l.LogFile,
		Start:   l.Start,
	}
}

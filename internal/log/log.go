// Package log writes leveled, categorized debug logs to a file. The TUI
// owns the terminal, so nothing is written anywhere until Init is called
// (via --debug or REVIEWDIFF_DEBUG).
package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatGit     Category = "git"     // git CLI invocations
	CatGitHub  Category = "github"  // pull request REST calls
	CatWatch   Category = "watch"   // filesystem watcher and polling
	CatSession Category = "session" // selection, scroll and reload
	CatUI      Category = "ui"
	CatConfig  Category = "config"
	CatCache   Category = "cache"
)

type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
}

var (
	loggerMu      sync.Mutex
	defaultLogger *Logger
)

// Init opens path through tea.LogToFile and routes all logging there.
// The returned func closes the file.
func Init(path string) (func(), error) {
	f, err := tea.LogToFile(path, "reviewdiff")
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	setDefault(&Logger{closer: f, writer: f, enabled: true, minLevel: LevelDebug})
	return func() {
		setDefault(nil)
		_ = f.Close()
	}, nil
}

// InitWriter routes logging to w. Used by tests.
func InitWriter(w io.Writer, minLevel Level) func() {
	setDefault(&Logger{writer: w, enabled: true, minLevel: minLevel})
	return func() { setDefault(nil) }
}

func setDefault(l *Logger) {
	loggerMu.Lock()
	defaultLogger = l
	loggerMu.Unlock()
}

func current() *Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	return defaultLogger
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel || l.writer == nil {
		return
	}

	// 2026-01-02T15:04:05 [ERROR] [git] message key=value
	entry := fmt.Sprintf("%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}
	_, _ = io.WriteString(l.writer, entry+"\n")
}

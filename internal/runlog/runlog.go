// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog writes timestamped run progress to the console and to a
// date-partitioned, append-only log file (automation_YYYYMMDD.log).
// Write failures are swallowed: logging never affects control flow.
package runlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Level is the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger tees entries to a console logger and the day's log file.
// It is safe for concurrent use.
type Logger struct {
	dir     string
	console *log.Logger
	now     func() time.Time

	mu sync.Mutex
}

// New returns a logger writing files under dir and console lines to
// console. A nil console disables console output.
func New(dir string, console io.Writer) *Logger {
	l := &Logger{dir: dir, now: time.Now}
	if console != nil {
		l.console = log.NewWithOptions(console, log.Options{
			Prefix:          "paper-engine",
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		})
	}
	return l
}

// Path returns the log file for the current day.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.pathFor(l.now())
}

func (l *Logger) pathFor(t time.Time) string {
	return filepath.Join(l.dir, fmt.Sprintf("automation_%s.log", t.Format("20060102")))
}

// Append writes one entry to the console and the log file.
func (l *Logger) Append(level Level, message string) {
	if l == nil {
		return
	}
	message = strings.TrimSpace(message)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.console != nil {
		switch level {
		case LevelWarn:
			l.console.Warn(message)
		case LevelError:
			l.console.Error(message)
		default:
			l.console.Info(message)
		}
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return
	}
	file, err := os.OpenFile(l.pathFor(now), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	line := fmt.Sprintf("%s %-5s %s\n", now.Format(time.RFC3339), string(level), message)
	_, _ = file.WriteString(line)
}

// Info appends an informational entry.
func (l *Logger) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logger) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logger) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}

// Tail returns up to maxLines of the most recent entries in today's file.
func (l *Logger) Tail(maxLines int) []string {
	if l == nil || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.pathFor(l.now()))
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}

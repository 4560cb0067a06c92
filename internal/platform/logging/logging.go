package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config captures logging configuration options.
type Config struct {
	Level    string
	Dir      string
	Filename string
}

// DefaultLogger is used by components that were constructed without an explicit logger.
var DefaultLogger *Logger

var (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"

	// Module tags get their own colors so pipeline stages are easy to pick out.
	tagColors = map[string]string{
		"BOOT":     "\x1b[96m",
		"HTTP":     "\x1b[95m",
		"TTS":      "\x1b[95m",
		"BATCH":    "\x1b[94m",
		"ASSEMBLE": "\x1b[92m",
		"SCRIPT":   "\x1b[34m",
		"STORE":    "\x1b[36m",
	}
)

// consoleHandler renders colored single-line log records.
type consoleHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeStr := r.Time.Format("2006-01-02 15:04:05.000")

	var levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelColor = colorDebug
	case slog.LevelInfo:
		levelColor = colorInfo
	case slog.LevelWarn:
		levelColor = colorWarn
	case slog.LevelError:
		levelColor = colorError
	default:
		levelColor = colorReset
	}

	msg := r.Message
	if tag := extractTag(msg); tag != "" {
		if c, ok := tagColors[tag]; ok {
			msg = c + msg + colorReset
		}
	}

	_, err := fmt.Fprintf(h.writer, "%s[%s]%s %s[%s]%s %s\n",
		colorTime, timeStr, colorReset,
		levelColor, strings.ToUpper(r.Level.String()), colorReset,
		msg,
	)
	return err
}

func (h *consoleHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *consoleHandler) WithGroup(_ string) slog.Handler { return h }

func extractTag(msg string) string {
	if !strings.HasPrefix(msg, "[") {
		return ""
	}
	end := strings.IndexByte(msg, ']')
	if end <= 1 {
		return ""
	}
	return msg[1:end]
}

// Logger wraps slog with tag-prefixed printf-style helpers and an optional file sink.
type Logger struct {
	slogger *slog.Logger
	file    *os.File
	level   slog.Level
	mu      sync.Mutex
}

// New creates a Logger writing colored output to stdout and plain output to
// the configured log file, if a directory is given.
func New(cfg Config) (*Logger, error) {
	level := parseLevel(cfg.Level)

	l := &Logger{level: level}

	var writer io.Writer = os.Stdout
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		filename := cfg.Filename
		if filename == "" {
			filename = "server.log"
		}
		path := filepath.Join(cfg.Dir, datedFilename(filename, time.Now()))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		writer = io.MultiWriter(os.Stdout, file)
	}

	l.slogger = slog.New(&consoleHandler{writer: writer, level: level})
	return l, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func datedFilename(base string, now time.Time) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s-%s%s", stem, now.Format("20060102"), ext)
}

// Close releases the file sink, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Slog exposes the structured logger for integrations that speak slog.
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

func (l *Logger) log(level slog.Level, msg string, args ...interface{}) {
	if l == nil || l.slogger == nil {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.slogger.Log(context.Background(), level, msg)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log(slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log(slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log(slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log(slog.LevelError, msg, args...) }

func (l *Logger) logWithTag(level slog.Level, tag, msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.log(level, "["+tag+"] "+msg)
}

func (l *Logger) DebugTag(tag, msg string, args ...interface{}) {
	l.logWithTag(slog.LevelDebug, tag, msg, args...)
}

func (l *Logger) InfoTag(tag, msg string, args ...interface{}) {
	l.logWithTag(slog.LevelInfo, tag, msg, args...)
}

func (l *Logger) WarnTag(tag, msg string, args ...interface{}) {
	l.logWithTag(slog.LevelWarn, tag, msg, args...)
}

func (l *Logger) ErrorTag(tag, msg string, args ...interface{}) {
	l.logWithTag(slog.LevelError, tag, msg, args...)
}

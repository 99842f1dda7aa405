// Structured logging for the tool change organizer
//
// Provides leveled logging with structured fields, text or JSON output and
// per-component prefixes. Configured from flags or from the environment.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a LogLevel. Unknown names map to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// OutputFormat specifies the output format for log messages
type OutputFormat int

const (
	FormatText OutputFormat = iota
	FormatJSON
)

// ParseFormat parses "text" or "json"; anything else is FormatText.
func ParseFormat(s string) OutputFormat {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// Fields is a map of structured logging fields
type Fields map[string]interface{}

// Logger writes leveled, prefixed messages. The zero value is not usable;
// create loggers with New.
type Logger struct {
	mu         *sync.Mutex
	prefix     string
	writer     io.Writer
	level      LogLevel
	timeFormat string
	colorize   bool
	outFormat  OutputFormat
	fields     Fields
	caller     bool
}

// Entry is a pending log line carrying extra fields
type Entry struct {
	logger *Logger
	fields Fields
}

var ansiColors = map[LogLevel]string{
	DEBUG: "\x1b[36m",
	INFO:  "\x1b[32m",
	WARN:  "\x1b[33m",
	ERROR: "\x1b[31m",
}

const ansiReset = "\x1b[0m"

// New creates a logger writing to stderr at INFO level
func New(prefix string) *Logger {
	return &Logger{
		mu:         &sync.Mutex{},
		prefix:     prefix,
		writer:     os.Stderr,
		level:      INFO,
		timeFormat: "2006-01-02 15:04:05.000",
		colorize:   os.Getenv("NO_COLOR") == "",
		outFormat:  FormatText,
		fields:     make(Fields),
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	l := New("")
	l.writer = io.Discard
	l.level = ERROR + 1
	return l
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetWriter sets the output writer
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// SetColorize enables or disables ANSI colors on the prefix
func (l *Logger) SetColorize(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colorize = enable
}

// SetFormat sets the output format
func (l *Logger) SetFormat(format OutputFormat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outFormat = format
}

// SetCaller enables file:line caller info
func (l *Logger) SetCaller(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.caller = enable
}

// WithPrefix returns a logger sharing this logger's output and settings under
// a different prefix. Settings changed on either afterwards are not shared.
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		mu:         l.mu,
		prefix:     prefix,
		writer:     l.writer,
		level:      l.level,
		timeFormat: l.timeFormat,
		colorize:   l.colorize,
		outFormat:  l.outFormat,
		fields:     l.fields,
		caller:     l.caller,
	}
}

// With returns a logger that attaches the given fields to every message
func (l *Logger) With(fields Fields) *Logger {
	child := l.WithPrefix(l.prefix)
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	child.fields = merged
	return child
}

// WithField returns an Entry with the given field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{logger: l, fields: Fields{key: value}}
}

// WithFields returns an Entry with the given fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{logger: l, fields: fields}
}

// WithError returns an Entry with the error field set
func (l *Logger) WithError(err error) *Entry {
	return l.WithField("error", err.Error())
}

func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func (l *Logger) mergedFields(extra Fields) Fields {
	if len(l.fields) == 0 {
		return extra
	}
	out := make(Fields, len(l.fields)+len(extra))
	for k, v := range l.fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (l *Logger) formatText(level LogLevel, msg string, fields Fields, caller string) string {
	var sb strings.Builder

	sb.WriteString(time.Now().Format(l.timeFormat))
	sb.WriteString(" [")
	sb.WriteString(fmt.Sprintf("%-5s", level.String()))
	sb.WriteString("] ")

	if l.prefix != "" {
		if l.colorize {
			sb.WriteString(ansiColors[level])
		}
		sb.WriteString(l.prefix)
		if l.colorize {
			sb.WriteString(ansiReset)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(msg)

	if caller != "" {
		sb.WriteString(" (")
		sb.WriteString(caller)
		sb.WriteString(")")
	}

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%v", k, fields[k])
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return sb.String()
}

// JSONLogEntry is the structure for JSON formatted log entries
type JSONLogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (l *Logger) formatJSON(level LogLevel, msg string, fields Fields, caller string) string {
	entry := JSONLogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Logger:    l.prefix,
		Message:   msg,
		Caller:    caller,
	}
	if len(fields) > 0 {
		entry.Fields = fields
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal log entry: %v"}`+"\n", err)
	}
	return string(data) + "\n"
}

// emit is the single write path; skip counts frames above the public method.
func (l *Logger) emit(level LogLevel, msg string, fields Fields, skip int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	var caller string
	if l.caller {
		caller = getCaller(skip + 1)
	}
	fields = l.mergedFields(fields)

	var out string
	if l.outFormat == FormatJSON {
		out = l.formatJSON(level, msg, fields, caller)
	} else {
		out = l.formatText(level, msg, fields, caller)
	}
	fmt.Fprint(l.writer, out)
}

func sprintf(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.emit(DEBUG, sprintf(msg, args), nil, 2)
}

// Info logs a message at INFO level
func (l *Logger) Info(msg string, args ...interface{}) {
	l.emit(INFO, sprintf(msg, args), nil, 2)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.emit(WARN, sprintf(msg, args), nil, 2)
}

// Error logs a message at ERROR level
func (l *Logger) Error(msg string, args ...interface{}) {
	l.emit(ERROR, sprintf(msg, args), nil, 2)
}

// WithField adds a field to the entry
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.WithFields(Fields{key: value})
}

// WithFields adds multiple fields to the entry
func (e *Entry) WithFields(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{logger: e.logger, fields: merged}
}

// WithError adds an error field to the entry
func (e *Entry) WithError(err error) *Entry {
	return e.WithField("error", err.Error())
}

func (e *Entry) Debug(msg string) { e.logger.emit(DEBUG, msg, e.fields, 2) }
func (e *Entry) Info(msg string)  { e.logger.emit(INFO, msg, e.fields, 2) }
func (e *Entry) Warn(msg string)  { e.logger.emit(WARN, msg, e.fields, 2) }
func (e *Entry) Error(msg string) { e.logger.emit(ERROR, msg, e.fields, 2) }

// Debugf logs formatted message at DEBUG level with fields
func (e *Entry) Debugf(format string, args ...interface{}) {
	e.logger.emit(DEBUG, fmt.Sprintf(format, args...), e.fields, 2)
}

// Infof logs formatted message at INFO level with fields
func (e *Entry) Infof(format string, args ...interface{}) {
	e.logger.emit(INFO, fmt.Sprintf(format, args...), e.fields, 2)
}

// Environment variables read by ConfigureFromEnv.
const (
	EnvLevel  = "TOOLCHANGE_LOG_LEVEL"
	EnvFormat = "TOOLCHANGE_LOG_FORMAT"
	EnvCaller = "TOOLCHANGE_LOG_CALLER"
)

// ConfigureFromEnv applies environment-based configuration to the logger.
//   - TOOLCHANGE_LOG_LEVEL: DEBUG, INFO, WARN, ERROR
//   - TOOLCHANGE_LOG_FORMAT: text, json
//   - TOOLCHANGE_LOG_CALLER: any non-empty value enables caller info
//   - NO_COLOR: any non-empty value disables colors
func ConfigureFromEnv(l *Logger) {
	if v := os.Getenv(EnvLevel); v != "" {
		l.SetLevel(ParseLevel(v))
	}
	if v := os.Getenv(EnvFormat); v != "" {
		l.SetFormat(ParseFormat(v))
	}
	if os.Getenv(EnvCaller) != "" {
		l.SetCaller(true)
	}
	if os.Getenv("NO_COLOR") != "" {
		l.SetColorize(false)
	}
}

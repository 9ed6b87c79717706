package mustache

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogOff
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "DEBUG"
	case LogInfo:
		return "INFO"
	case LogWarn:
		return "WARN"
	case LogError:
		return "ERROR"
	case LogOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

type Fields map[string]interface{}

// Logger writes leveled, timestamped lines with sorted key=value fields.
// Loggers derived with WithField share the writer, level and lock of the
// logger they came from.
type Logger struct {
	out    *logOutput
	fields Fields
}

type logOutput struct {
	mu     sync.Mutex
	writer io.Writer
	level  LogLevel
}

var (
	globalLogger     *Logger
	globalLoggerOnce sync.Once
	globalLoggerMu   sync.RWMutex
)

func initGlobalLogger() {
	globalLoggerOnce.Do(func() {
		config := GetGlobalConfig()
		level := parseLogLevel(config.LogLevel)
		logger := NewLogger(os.Stderr, level)

		globalLoggerMu.Lock()
		globalLogger = logger
		globalLoggerMu.Unlock()
	})
}

func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LogDebug
	case "info":
		return LogInfo
	case "warn":
		return LogWarn
	case "error":
		return LogError
	case "off":
		return LogOff
	default:
		return LogInfo
	}
}

func NewLogger(w io.Writer, level LogLevel) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{
		out:    &logOutput{writer: w, level: level},
		fields: make(Fields),
	}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.level = level
}

func (l *Logger) Level() LogLevel {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return l.out.level
}

func (l *Logger) IsDebugMode() bool {
	return l.Level() == LogDebug
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Fields{key: value})
}

func (l *Logger) WithFields(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{out: l.out, fields: merged}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if level < l.out.level {
		return
	}

	var line strings.Builder
	line.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&line, " [%s] ", level)
	fmt.Fprintf(&line, format, args...)

	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&line, " %s=%v", k, l.fields[k])
		}
	}

	fmt.Fprintln(l.out.writer, line.String())
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LogWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogError, format, args...)
}

// DebugTemplate logs a template and its view before rendering.
func (l *Logger) DebugTemplate(template string, view interface{}) {
	if !l.IsDebugMode() {
		return
	}
	l.Debug("Template: %q", truncate(template, 80))
	l.Debug("View: %+v", view)
}

// DebugLookup logs the result of a context lookup.
func (l *Logger) DebugLookup(name string, value interface{}) {
	if !l.IsDebugMode() {
		return
	}
	l.WithFields(Fields{"name": name, "kind": KindOf(value)}).Debug("Lookup")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SetLogger replaces the global logger.
func SetLogger(logger *Logger) {
	initGlobalLogger()
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()
}

// GetLogger returns the global logger.
func GetLogger() *Logger {
	initGlobalLogger()
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// UpdateLoggerFromConfig updates the global logger based on the current global configuration
func UpdateLoggerFromConfig() {
	config := GetGlobalConfig()
	GetLogger().SetLevel(parseLogLevel(config.LogLevel))
}

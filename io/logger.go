package archio

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	// LevelOff disables logging when used as threshold.
	LevelOff
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts "debug", "info", "warn", "error" or "off" into a LogLevel.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarning, true
	case "error":
		return LevelError, true
	case "off", "none":
		return LevelOff, true
	}
	return LevelInfo, false
}

// LogFormat defines the output format for log messages
type LogFormat int

const (
	LogFormatTagged  LogFormat = iota // [INFO] [WARN] [ERROR] [DEBUG]
	LogFormatSymbols                  // ● ◆ ▲ ✗
	LogFormatPlain                    // No prefix
)

// Theme holds the color of each level.
type Theme struct {
	Debug   *color.Color
	Info    *color.Color
	Warning *color.Color
	Error   *color.Color
}

// DefaultTheme returns the default level colors.
func DefaultTheme() Theme {
	return Theme{
		Debug:   color.New(color.FgMagenta),
		Info:    color.New(color.FgBlue),
		Warning: color.New(color.FgYellow),
		Error:   color.New(color.FgRed, color.Bold),
	}
}

// Logger writes leveled messages to an IOManager. Errors and warnings go to
// the error stream.
type Logger struct {
	io         *IOManager
	format     LogFormat
	threshold  LogLevel
	prefixes   map[LogLevel]string
	withTime   bool
	timeFormat string
	theme      Theme
}

// NewLogger creates a new logger bound to the given IOManager
func NewLogger(io *IOManager) *Logger {
	return &Logger{
		io:         io,
		format:     LogFormatTagged,
		threshold:  LevelInfo,
		prefixes:   taggedPrefixes(),
		timeFormat: "15:04:05",
		theme:      DefaultTheme(),
	}
}

func taggedPrefixes() map[LogLevel]string {
	return map[LogLevel]string{
		LevelDebug:   "[DEBUG]",
		LevelInfo:    "[INFO]",
		LevelWarning: "[WARN]",
		LevelError:   "[ERROR]",
	}
}

func symbolPrefixes() map[LogLevel]string {
	return map[LogLevel]string{
		LevelDebug:   "●",
		LevelInfo:    "◆",
		LevelWarning: "▲",
		LevelError:   "✗",
	}
}

// WithFormat sets the log format and returns the logger for chaining
func (l *Logger) WithFormat(format LogFormat) *Logger {
	l.format = format
	switch format {
	case LogFormatTagged:
		l.prefixes = taggedPrefixes()
	case LogFormatSymbols:
		l.prefixes = symbolPrefixes()
	case LogFormatPlain:
		l.prefixes = map[LogLevel]string{}
	}
	return l
}

// WithLevel sets the minimum level written.
func (l *Logger) WithLevel(level LogLevel) *Logger {
	l.threshold = level
	return l
}

// WithTimestamp enables or disables timestamp in log output
func (l *Logger) WithTimestamp(enabled bool) *Logger {
	l.withTime = enabled
	return l
}

// WithTheme sets a custom theme for level colors
func (l *Logger) WithTheme(theme Theme) *Logger {
	l.theme = theme
	return l
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.threshold && level != LevelOff
}

// Log outputs a log message at the specified level
func (l *Logger) Log(level LogLevel, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.writer(level), l.formatMessage(level, msg))
}

func (l *Logger) formatMessage(level LogLevel, msg string) string {
	if strings.TrimSpace(msg) == "" {
		return msg
	}
	parts := make([]string, 0, 3)
	if p := l.prefixes[level]; p != "" {
		parts = append(parts, p)
	}
	if l.withTime {
		parts = append(parts, time.Now().Format(l.timeFormat))
	}
	parts = append(parts, msg)
	return l.colorize(level, strings.Join(parts, " "))
}

func (l *Logger) colorize(level LogLevel, text string) string {
	var c *color.Color
	switch level {
	case LevelDebug:
		c = l.theme.Debug
	case LevelInfo:
		c = l.theme.Info
	case LevelWarning:
		c = l.theme.Warning
	case LevelError:
		c = l.theme.Error
	}
	if c == nil || !l.io.SupportsColor() {
		return text
	}
	// The decision is ours; fatih/color's global detection looks at os.Stdout only.
	cc := *c
	cc.EnableColor()
	return cc.Sprint(text)
}

func (l *Logger) writer(level LogLevel) io.Writer {
	if level >= LevelWarning {
		return l.io.Err()
	}
	return l.io.Out()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) { l.Log(LevelDebug, format, args...) }

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) { l.Log(LevelInfo, format, args...) }

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...any) { l.Log(LevelWarning, format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...any) { l.Log(LevelError, format, args...) }

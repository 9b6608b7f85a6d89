package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" (any case).
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger defines the minimal logging interface for UnitAI.
// Arguments after msg are slog-style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// UnitAILogger wraps slog.Logger adding component scoping and domain helpers.
// With* methods return modified copies; the receiver is never changed.
type UnitAILogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	attrs     []slog.Attr
}

// LoggerConfig configures construction of a UnitAILogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultLoggerConfig returns a JSON info level configuration writing to stderr.
// Stdout stays free for command output and the MCP stdio transport.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stderr}
}

// NewLogger builds a UnitAILogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *UnitAILogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &UnitAILogger{logger: slog.New(handler), level: cfg.Level, component: cfg.Component}
}

// NewSlogLogger creates a new UnitAILogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *UnitAILogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *UnitAILogger) clone() *UnitAILogger {
	nl := *l
	nl.attrs = append([]slog.Attr(nil), l.attrs...)
	return &nl
}

// WithComponent sets the logical component (converter, insight, mcp, ...).
func (l *UnitAILogger) WithComponent(c string) *UnitAILogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithContext adds a key/value attribute attached to every entry.
func (l *UnitAILogger) WithContext(key string, value any) *UnitAILogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, slog.Any(key, value))
	return nl
}

func (l *UnitAILogger) emit(level slog.Level, msg string, extra ...slog.Attr) {
	attrs := make([]slog.Attr, 0, len(l.attrs)+len(extra)+1)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, extra...)
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func (l *UnitAILogger) log(level slog.Level, allowed bool, msg string, args ...any) {
	if !allowed {
		return
	}
	l.emit(level, msg, argsToAttrs(args)...)
}

// argsToAttrs converts slog-style alternating key/value args.
func argsToAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2+1)
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			attrs = append(attrs, a)
		case string:
			if i+1 >= len(args) {
				attrs = append(attrs, slog.String("!BADKEY", a))
				continue
			}
			attrs = append(attrs, slog.Any(a, args[i+1]))
			i++
		default:
			attrs = append(attrs, slog.Any("!BADKEY", a))
		}
	}
	return attrs
}

// Debug logs at debug level.
func (l *UnitAILogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, msg, args...)
}

// Info logs at info level.
func (l *UnitAILogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *UnitAILogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, l.level <= LogLevelWarn, msg, args...)
}

// Error logs at error level.
func (l *UnitAILogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, l.level <= LogLevelError, msg, args...)
}

// LogLLMCall records one collaborator request: model, correlation id, latency and outcome.
func (l *UnitAILogger) LogLLMCall(model, requestID string, dur time.Duration, success bool, err error) {
	attrs := []slog.Attr{
		slog.String("model", model),
		slog.String("request_id", requestID),
		slog.Duration("duration", dur),
		slog.Bool("success", success),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	if !success {
		if l.level <= LogLevelError {
			l.emit(slog.LevelError, "LLM call failed", attrs...)
		}
		return
	}
	if l.level <= LogLevelInfo {
		l.emit(slog.LevelInfo, "LLM call completed", attrs...)
	}
}

// LogConversion records a conversion at debug level.
func (l *UnitAILogger) LogConversion(category, from, to string, value, result float64) {
	if l.level > LogLevelDebug {
		return
	}
	l.emit(slog.LevelDebug, "Conversion computed",
		slog.String("category", category),
		slog.String("from", from),
		slog.String("to", to),
		slog.Float64("value", value),
		slog.Float64("result", result),
	)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *UnitAILogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("Operation completed", "operation", op, "duration", time.Since(start)) }
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// OrNoOp returns l, or NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}

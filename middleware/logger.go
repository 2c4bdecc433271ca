package middleware

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/dzonerzy/go-archons/internal/pool"
)

// requestInfoPool is a global pool for RequestInfo objects to reduce allocations
var requestInfoPool = pool.NewPoolWithReset(
	func() *RequestInfo {
		return &RequestInfo{
			Values:   make(map[string]any, 4),
			Metadata: make(map[string]any, 4),
		}
	},
	func(info *RequestInfo) {
		info.Command = ""
		info.Args = info.Args[:0]
		info.StartTime = time.Time{}
		info.Duration = 0
		info.Error = nil
		for k := range info.Values {
			delete(info.Values, k)
		}
		for k := range info.Metadata {
			delete(info.Metadata, k)
		}
	},
)

// Logger creates a middleware that logs callback invocations
func Logger(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return LoggerWithWriter(getLogWriter(config.LogOutput), options...)
}

// LoggerWithWriter creates a logger middleware that writes to a specific writer
func LoggerWithWriter(writer io.Writer, options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			if config.LogLevel == LogLevelNone || writer == nil {
				return next(ctx)
			}

			info := requestInfoPool.Get()
			defer requestInfoPool.Put(info)

			info.Command = getCommandName(ctx)
			info.Args = append(info.Args, ctx.RawArgs()...)
			if config.IncludeValues {
				for _, key := range ctx.Keys() {
					if v, ok := ctx.Lookup(key); ok {
						info.Values[key] = v
					}
				}
			}
			info.StartTime = time.Now()

			if config.LogLevel >= LogLevelDebug {
				logRequest(writer, config, info, "START")
			}

			err := next(ctx)

			info.Duration = time.Since(info.StartTime)
			info.Error = err
			logRequest(writer, config, info, getLogLevel(err))
			return err
		}
	}
}

// getLogLevel determines log level based on error status
func getLogLevel(err error) string {
	if err != nil {
		return "ERROR"
	}
	return "SUCCESS"
}

func logRequest(writer io.Writer, config *MiddlewareConfig, info *RequestInfo, level string) {
	if !shouldLog(config.LogLevel, level) {
		return
	}
	switch config.LogFormat { // exhaustive over LogFormat
	case LogFormatJSON:
		writeJSONLog(writer, info, level, config)
	case LogFormatText:
		writeTextLog(writer, info, level, config)
	default:
		writeTextLog(writer, info, level, config)
	}
}

// shouldLog determines if the log level warrants logging
func shouldLog(configLevel LogLevel, messageLevel string) bool {
	switch messageLevel {
	case "ERROR":
		return configLevel >= LogLevelError
	case "SUCCESS":
		return configLevel >= LogLevelInfo
	case "START":
		return configLevel >= LogLevelDebug
	default:
		return configLevel >= LogLevelInfo
	}
}

// getLogWriter returns the appropriate writer based on configuration
func getLogWriter(output LogOutput) io.Writer {
	switch output {
	case LogOutputStdout:
		return os.Stdout
	case LogOutputNone:
		return nil
	default:
		return os.Stderr
	}
}

// writeTextLog writes a human-readable text log entry with minimal allocations
func writeTextLog(writer io.Writer, info *RequestInfo, level string, config *MiddlewareConfig) {
	buf := pool.GetBuffer(256)
	defer pool.PutBuffer(buf)

	*buf = append(*buf, '[')
	*buf = append(*buf, info.StartTime.Format("2006-01-02 15:04:05")...)
	*buf = append(*buf, "] "...)
	*buf = append(*buf, level...)
	*buf = append(*buf, " command="...)
	*buf = append(*buf, info.Command...)

	if info.Duration > 0 {
		*buf = append(*buf, " duration="...)
		*buf = append(*buf, info.Duration.String()...)
	}

	if config.IncludeArgs && len(info.Args) > 0 {
		*buf = append(*buf, " args="...)
		for i, arg := range info.Args {
			if i > 0 {
				*buf = append(*buf, ' ')
			}
			*buf = append(*buf, arg...)
		}
	}

	if len(info.Values) > 0 {
		for _, key := range sortedKeys(info.Values) {
			*buf = append(*buf, ' ')
			*buf = append(*buf, key...)
			*buf = append(*buf, '=')
			enc, _ := json.Marshal(info.Values[key])
			*buf = append(*buf, enc...)
		}
	}

	if info.Error != nil {
		*buf = append(*buf, " error="...)
		*buf = strconv.AppendQuote(*buf, info.Error.Error())
	}

	*buf = append(*buf, '\n')

	//nolint:errcheck,gosec // Logging is best-effort; ignore write errors.
	writer.Write(*buf)
}

// writeJSONLog writes a structured JSON log entry with minimal allocations
func writeJSONLog(writer io.Writer, info *RequestInfo, level string, config *MiddlewareConfig) {
	buf := pool.GetBuffer(512)
	defer pool.PutBuffer(buf)

	*buf = append(*buf, '{')
	*buf = append(*buf, `"timestamp":"`...)
	*buf = append(*buf, info.StartTime.Format(time.RFC3339)...)
	*buf = append(*buf, `","level":"`...)
	*buf = append(*buf, level...)
	*buf = append(*buf, `","command":`...)
	enc, _ := json.Marshal(info.Command)
	*buf = append(*buf, enc...)

	if info.Duration > 0 {
		*buf = append(*buf, `,"duration_ms":`...)
		*buf = strconv.AppendInt(*buf, info.Duration.Milliseconds(), 10)
	}

	if config.IncludeArgs && len(info.Args) > 0 {
		*buf = append(*buf, `,"args":[`...)
		for i, arg := range info.Args {
			if i > 0 {
				*buf = append(*buf, ',')
			}
			enc, _ := json.Marshal(arg)
			*buf = append(*buf, enc...)
		}
		*buf = append(*buf, ']')
	}

	if len(info.Values) > 0 {
		if enc, err := json.Marshal(info.Values); err == nil {
			*buf = append(*buf, `,"values":`...)
			*buf = append(*buf, enc...)
		}
	}

	if info.Error != nil {
		*buf = append(*buf, `,"error":`...)
		enc, _ := json.Marshal(info.Error.Error())
		*buf = append(*buf, enc...)
	}

	if len(info.Metadata) > 0 {
		if enc, err := json.Marshal(info.Metadata); err == nil {
			*buf = append(*buf, `,"metadata":`...)
			*buf = append(*buf, enc...)
		}
	}

	*buf = append(*buf, '}', '\n')

	//nolint:errcheck,gosec // Logging is best-effort; ignore write errors.
	writer.Write(*buf)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Convenience constructors for common logging scenarios

// DebugLogger creates a logger with debug level (logs everything)
func DebugLogger() Middleware {
	return Logger(WithLogLevel(LogLevelDebug))
}

// ErrorLogger creates a logger with error level (logs only errors)
func ErrorLogger() Middleware {
	return Logger(WithLogLevel(LogLevelError))
}

// JSONLogger creates a logger that outputs JSON format
func JSONLogger() Middleware {
	return Logger(func(config *MiddlewareConfig) {
		config.LogFormat = LogFormatJSON
	})
}

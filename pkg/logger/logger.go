package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	EMPTY   = ""
	DEBUG   = "debug"
	INFO    = "info"
	WARN    = "warn"
	ERROR   = "error"
	JSON    = "json"
	TEXT    = "text"
	SERVICE = "service"

	badKey = "!BADKEY"
)

// Logger keeps a key-value call style (msg, "key", value, ...) on top of zerolog.
type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level     string
	Format    string
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Format == EMPTY {
		cfg.Format = JSON
	}
	if cfg.Level == EMPTY {
		cfg.Level = INFO
	}

	var level zerolog.Level
	switch cfg.Level {
	case DEBUG:
		level = zerolog.DebugLevel
	case INFO:
		level = zerolog.InfoLevel
	case WARN:
		level = zerolog.WarnLevel
	case ERROR:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	out := cfg.Output
	if cfg.Format == TEXT {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Service != EMPTY {
		ctx = ctx.Str(SERVICE, cfg.Service)
	}
	if cfg.AddSource {
		// skip appendFields frames so the caller of Info/Warn/... is reported
		ctx = ctx.CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1)
	}

	return &Logger{zl: ctx.Logger()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.write(l.zl.Debug(), msg, args)
}

func (l *Logger) Info(msg string, args ...any) {
	l.write(l.zl.Info(), msg, args)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.write(l.zl.Warn(), msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	l.write(l.zl.Error(), msg, args)
}

// Fatal logs a critical error and exits the application with status code 1
// Use this for unrecoverable errors that prevent the application from starting or continuing
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// With returns a child logger that always carries the given key-value pairs.
func (l *Logger) With(args ...any) *Logger {
	ctx := l.zl.With()
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		ctx = ctx.Interface(key, val)
	}
	return &Logger{zl: ctx.Logger()}
}

// Printf adapts the logger to printf-style sinks such as broker client loggers.
func (l *Logger) Printf(format string, args ...any) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) write(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		ev = appendField(ev, key, val)
	}
	ev.Msg(msg)
}

func pair(args []any, i int) (string, any) {
	if i+1 >= len(args) {
		return badKey, args[i]
	}
	key, ok := args[i].(string)
	if !ok {
		return badKey, args[i+1]
	}
	return key, args[i+1]
}

func appendField(ev *zerolog.Event, key string, val any) *zerolog.Event {
	switch v := val.(type) {
	case error:
		return ev.AnErr(key, v)
	case string:
		return ev.Str(key, v)
	case int:
		return ev.Int(key, v)
	case int64:
		return ev.Int64(key, v)
	case bool:
		return ev.Bool(key, v)
	case float64:
		return ev.Float64(key, v)
	case time.Duration:
		return ev.Str(key, v.String())
	case time.Time:
		return ev.Time(key, v)
	case fmt.Stringer:
		return ev.Stringer(key, v)
	default:
		return ev.Interface(key, v)
	}
}

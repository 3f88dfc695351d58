package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const FormatPretty = "pretty"

// Logger is a zerolog logger bound to one service name. Derived loggers
// (WithComponent, WithError, WithFields) share the service.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// Init builds the process-wide logger from cfg and, for console formats,
// points zerolog's own global logger at the same writer.
func Init(cfg *Config) {
	cfg.ApplyDefaults()
	name := cfg.ServiceName
	if name == "" {
		name = "default"
	}
	l := New(cfg, name)
	SetGlobalLogger(l)
	if isConsole(cfg.Format) {
		log.Logger = l.logger
	}
}

// New builds a logger from cfg. An unparseable level falls back to info.
func New(cfg *Config, serviceName string) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = outputWriter(cfg.Output)
	if isConsole(cfg.Format) {
		w = consoleWriter(w, cfg.NoColor)
	}
	zc := zerolog.New(w).With().Str("service", serviceName)
	if cfg.Timestamp || isConsole(cfg.Format) {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{logger: zc.Logger(), service: serviceName}
}

// NewWithWriter writes JSON records to w, which lets tests decode them.
func NewWithWriter(w io.Writer, serviceName string) *Logger {
	return &Logger{logger: zerolog.New(w).With().Str("service", serviceName).Logger(), service: serviceName}
}

// NewDefault logs info and above to stderr in console format.
func NewDefault(serviceName string) *Logger {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return New(cfg, serviceName)
}

func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

func (l *Logger) derive(zc zerolog.Context) *Logger {
	return &Logger{logger: zc.Logger(), service: l.service}
}

func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.logger.With().Str(FieldComponent, name))
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.logger.With().Fields(fields))
}

func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.logger.With().Err(err))
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Error(), msg, fields)
}

// emit tolerates the nil event zerolog returns for disabled levels.
func emit(ev *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, f := range fields {
		ev.Fields(f)
	}
	ev.Msg(msg)
}

var global atomic.Pointer[Logger]

// SetGlobalLogger replaces the logger package-level calls write to.
func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the logger set by Init or SetGlobalLogger, or a
// console default when neither ran.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	global.CompareAndSwap(nil, NewDefault("default"))
	return global.Load()
}

func Debug(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Debug(msg, fields...) }

func Info(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Info(msg, fields...) }

func Warn(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Warn(msg, fields...) }

func Error(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Error(msg, fields...) }

func isConsole(format string) bool {
	f := strings.ToLower(format)
	return f == "console" || f == FormatPretty
}

func outputWriter(output string) *os.File {
	if strings.EqualFold(output, "stdout") {
		return os.Stdout
	}
	return os.Stderr
}

// levelTags shortens level names to three letters with an ANSI color.
var levelTags = map[string]struct{ tag, color string }{
	zerolog.LevelTraceValue: {"TRC", ""},
	zerolog.LevelDebugValue: {"DBG", "36"},
	zerolog.LevelInfoValue:  {"INF", "32"},
	zerolog.LevelWarnValue:  {"WRN", "33"},
	zerolog.LevelErrorValue: {"ERR", "31"},
	zerolog.LevelFatalValue: {"FTL", "35"},
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			name := fmt.Sprint(i)
			lt, ok := levelTags[name]
			if !ok {
				return "[" + strings.ToUpper(name) + "]"
			}
			if noColor || lt.color == "" {
				return "[" + lt.tag + "]"
			}
			return "\033[" + lt.color + "m[" + lt.tag + "]\033[0m"
		},
		FormatFieldName: func(i interface{}) string { return fmt.Sprint(i) + ":" },
	}
}

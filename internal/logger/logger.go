package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

// Logs never go to stdout: the stdio transport owns it.

var (
	mu            sync.RWMutex
	showDateTime  bool
	currentLevel  = INFO
	currentOutput = 'c'
	logPath       = "/tmp/betscout.log"
	logFile       *os.File
	base          *zap.Logger
)

type LogLevel int

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorOrange  = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	INFORM
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

func init() {
	rebuild()
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case INFORM:
		return "INFORM"
	case HIGHLIGHT:
		return "HIGHLIGHT"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) color() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case INFORM:
		return colorMagenta
	case HIGHLIGHT:
		return colorCyan
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a level name such as "debug" or "WARN" to a LogLevel
func ParseLevel(s string) (LogLevel, error) {
	for l := DEBUG; l <= FATAL; l++ {
		if strings.EqualFold(l.String(), strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

func SetShowDateTime(value bool) {
	mu.Lock()
	showDateTime = value
	mu.Unlock()
	rebuild()
}

func SetLevel(level LogLevel) {
	mu.Lock()
	currentLevel = level
	mu.Unlock()
	rebuild()
}

// SetLogFile changes the file used by the 'f' and 'b' outputs
func SetLogFile(path string) {
	mu.Lock()
	logPath = path
	mu.Unlock()
	rebuild()
}

// SetLogOutput sets the output destination for logs
// 'c' for console (stderr), 'f' for file, 'b' for both
func SetLogOutput(outputType rune) error {
	switch outputType {
	case 'c', 'f', 'b':
	default:
		return fmt.Errorf("invalid log output type: %c", outputType)
	}
	mu.Lock()
	currentOutput = outputType
	mu.Unlock()
	return rebuild()
}

func rebuild() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	encCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		CallerKey:      "caller",
		NameKey:        "logger",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if showDateTime {
		encCfg.TimeKey = "time"
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	}

	var sinks []zapcore.WriteSyncer
	var err error
	if currentOutput == 'c' || currentOutput == 'b' {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}
	if currentOutput == 'f' || currentOutput == 'b' {
		logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// fall back to console so logs are never silently lost
			sinks = append(sinks[:0], zapcore.Lock(os.Stderr))
		} else {
			sinks = append(sinks, zapcore.AddSync(logFile))
		}
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.NewMultiWriteSyncer(sinks...),
		zap.NewAtomicLevelAt(currentLevel.zapLevel()),
	)
	base = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	return err
}

// Named returns a sugared zap logger for a component. Components take this rather than the
// package functions so tests can hand them zap.NewNop().Sugar().
func Named(name string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithOptions(zap.AddCallerSkip(-2)).Named(name).Sugar()
}

// Sync flushes buffered entries
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

func log(level LogLevel, format string, v ...any) {
	mu.RLock()
	l, threshold := base, currentLevel
	mu.RUnlock()
	if level < threshold {
		return
	}

	primitives, fields := processArgs(v...)
	msg := format
	if len(primitives) > 0 {
		msg = format + " " + strings.Join(primitives, " ")
	}
	msg = level.color() + msg + colorReset

	if ce := l.Check(level.zapLevel(), msg); ce != nil {
		ce.Write(fields...)
	}
}

// processArgs renders primitive arguments inline and turns everything else into structured
// fields, which the console encoder prints as JSON after the message
func processArgs(args ...any) ([]string, []zap.Field) {
	if len(args) == 0 {
		return nil, nil
	}
	var primitives []string
	var fields []zap.Field
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			primitives = append(primitives, "nil")
		case float32:
			primitives = append(primitives, fmt.Sprintf("%.2f", v))
		case float64:
			primitives = append(primitives, fmt.Sprintf("%.2f", v))
		case string:
			primitives = append(primitives, v)
		case error:
			primitives = append(primitives, v.Error())
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			primitives = append(primitives, fmt.Sprintf("%v", v))
		default:
			fields = append(fields, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
	}
	return primitives, fields
}

// Convenience methods using the default logger
func Debug(format string, v ...any) {
	log(DEBUG, format, v...)
}

func Info(format string, v ...any) {
	log(INFO, format, v...)
}

func Inform(format string, v ...any) {
	log(INFORM, format, v...)
}

func Highlight(format string, v ...any) {
	log(HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	log(WARN, format, v...)
}

func Error(format string, v ...any) {
	log(ERROR, format, v...)
}

// Fatal logs and exits through zap
func Fatal(format string, v ...any) {
	log(FATAL, format, v...)
	os.Exit(1)
}

package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
}

// FieldLogger can produce child loggers that carry an extra field, e.g. the name of a flow task.
type FieldLogger interface {
	Logger
	WithField(key string, value interface{}) Logger
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
}

// Option customises the logrus logger behind a LoggerImpl.
type Option func(l *log.Logger)

// WithJSONFormat switches output to JSON, which is what the HTTP server uses.
func WithJSONFormat() Option {
	return func(l *log.Logger) {
		l.SetFormatter(&log.JSONFormatter{})
	}
}

// WithOutput redirects log output to w.
func WithOutput(w io.Writer) Option {
	return func(l *log.Logger) {
		l.SetOutput(w)
	}
}

// NewLogger will create a new logger implementation.
// An invalid level is reported to stdout and causes exit(1).
func NewLogger(serviceName string, level string, stackDumpOnPanic bool, opts ...Option) *LoggerImpl {
	l, err := newLogger(serviceName, level, stackDumpOnPanic, opts...)
	if err != nil {
		fmt.Println("Error setting up logging: ", err)
		os.Exit(1)
	}
	return l
}

// NewLoggerE is NewLogger that returns an error for a bad level instead of exiting.
func NewLoggerE(serviceName string, level string, stackDumpOnPanic bool, opts ...Option) (*LoggerImpl, error) {
	return newLogger(serviceName, level, stackDumpOnPanic, opts...)
}

func newLogger(serviceName string, level string, stackDumpOnPanic bool, opts ...Option) (*LoggerImpl, error) {
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logLevel)
	for _, o := range opts {
		o(l)
	}
	entry := l.WithFields(log.Fields{
		"service": serviceName,
	})
	return &LoggerImpl{Logger: entry, Service: serviceName, LogLevelStr: level, PrintStackDump: stackDumpOnPanic}, nil
}

// WithField returns a child logger that adds key=value to every message.
func (l *LoggerImpl) WithField(key string, value interface{}) Logger {
	return &LoggerImpl{
		Logger:         l.Logger.WithField(key, value),
		Service:        l.Service,
		LogLevelStr:    l.LogLevelStr,
		PrintStackDump: l.PrintStackDump,
	}
}

// Trace log.
func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

// Debug log.
func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

// Info log.
func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

// Warn log.
func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace in trace mode or when the user asks for stack dumps).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Error(message...)
		return
	}
	l.Logger.Error(message...)
}

// Panic (with stack trace in debug mode, or if user explicitly sets PrintStackDump).
// Without either, the message is logged and the process exits.
func (l *LoggerImpl) Panic(message ...interface{}) {
	if l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Panic(message...)
		return
	}
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.Panic(message...)
		return
	}
	l.Logger.Fatal(message...)
}

// Fatal (with stack trace in debug mode).
// This causes exit(1) without a stack dump by default.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Fatal(message...)
		return
	}
	l.Logger.Fatal(message...)
}

// SetOutput will set the log output to the Writer supplied.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	l.Logger.Logger.SetOutput(writer)
}

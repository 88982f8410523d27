// Package fflog provides the leveled logging abstraction used throughout the SDK.
package fflog

import (
	"log"
	"os"
)

// LogLevel is one of the severities a Loggers can be restricted to.
type LogLevel int

// Log levels, in increasing order of severity. None suppresses everything.
const (
	Debug LogLevel = iota
	Info
	Warn
	Error
	None
)

func (l LogLevel) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "NONE"
	}
}

// BaseLogger is the minimal logging interface that Loggers writes to. *log.Logger satisfies it.
type BaseLogger interface {
	Println(values ...interface{})
	Printf(format string, values ...interface{})
}

var defaultLogger = log.New(os.Stderr, "", log.LstdFlags)

// Loggers is a set of per-level loggers with a configurable minimum level. The zero value is
// usable: it logs to a default stderr logger at Info and above.
type Loggers struct {
	base        BaseLogger
	overrides   [4]BaseLogger
	minLevel    LogLevel
	initialized bool
}

func (l *Loggers) init() {
	if l.initialized {
		return
	}
	l.base = defaultLogger
	l.minLevel = Info
	l.initialized = true
}

func (l *Loggers) loggerFor(level LogLevel) BaseLogger {
	if override := l.overrides[level]; override != nil {
		return override
	}
	return l.base
}

// SetBaseLogger sets the underlying logger used for all levels that have not been overridden
// individually via SetBaseLoggerForLevel.
func (l *Loggers) SetBaseLogger(logger BaseLogger) {
	l.init()
	l.base = logger
}

// SetBaseLoggerForLevel overrides the logger used for a single level.
func (l *Loggers) SetBaseLoggerForLevel(level LogLevel, logger BaseLogger) {
	l.init()
	if level >= Debug && level <= Error {
		l.overrides[level] = logger
	}
}

// SetMinLevel sets the minimum level that will be written.
func (l *Loggers) SetMinLevel(level LogLevel) {
	l.init()
	l.minLevel = level
}

// IsDebugEnabled reports whether Debug-level messages would currently be written.
func (l *Loggers) IsDebugEnabled() bool {
	l.init()
	return l.minLevel <= Debug
}

func (l *Loggers) print(level LogLevel, values ...interface{}) {
	l.init()
	if level < l.minLevel {
		return
	}
	l.loggerFor(level).Println(append([]interface{}{level.String() + ":"}, values...)...)
}

func (l *Loggers) printf(level LogLevel, format string, values ...interface{}) {
	l.init()
	if level < l.minLevel {
		return
	}
	l.loggerFor(level).Printf(level.String()+": "+format, values...)
}

// Debug logs a message at Debug level.
func (l *Loggers) Debug(values ...interface{}) { l.print(Debug, values...) }

// Debugf logs a formatted message at Debug level.
func (l *Loggers) Debugf(format string, values ...interface{}) { l.printf(Debug, format, values...) }

// Info logs a message at Info level.
func (l *Loggers) Info(values ...interface{}) { l.print(Info, values...) }

// Infof logs a formatted message at Info level.
func (l *Loggers) Infof(format string, values ...interface{}) { l.printf(Info, format, values...) }

// Warn logs a message at Warn level.
func (l *Loggers) Warn(values ...interface{}) { l.print(Warn, values...) }

// Warnf logs a formatted message at Warn level.
func (l *Loggers) Warnf(format string, values ...interface{}) { l.printf(Warn, format, values...) }

// Error logs a message at Error level.
func (l *Loggers) Error(values ...interface{}) { l.print(Error, values...) }

// Errorf logs a formatted message at Error level.
func (l *Loggers) Errorf(format string, values ...interface{}) { l.printf(Error, format, values...) }

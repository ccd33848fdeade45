package real

import (
	"github.com/sirupsen/logrus"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// Logger routes whatsmeow's internal logging into logrus. Every entry carries
// a "module" field naming the whatsmeow component.
type Logger struct {
	module string
	entry  *logrus.Entry
}

var _ waLog.Logger = (*Logger)(nil)

// NewLogger creates a logger for module on the standard logrus logger.
func NewLogger(module string) *Logger {
	return NewLoggerWithEntry(logrus.NewEntry(logrus.StandardLogger()), module)
}

// NewLoggerWithEntry creates a logger for module on top of entry.
func NewLoggerWithEntry(entry *logrus.Entry, module string) *Logger {
	return &Logger{
		module: module,
		entry:  entry.WithField("module", module),
	}
}

func (l *Logger) Errorf(msg string, args ...any) { l.entry.Errorf(msg, args...) }
func (l *Logger) Warnf(msg string, args ...any)  { l.entry.Warnf(msg, args...) }
func (l *Logger) Infof(msg string, args ...any)  { l.entry.Infof(msg, args...) }
func (l *Logger) Debugf(msg string, args ...any) { l.entry.Debugf(msg, args...) }

// Sub returns a child logger whose module is nested under l's.
func (l *Logger) Sub(module string) waLog.Logger {
	return &Logger{
		module: l.module + "/" + module,
		entry:  l.entry.WithField("module", l.module+"/"+module),
	}
}

package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger instances provide custom logging.
type Logger interface {

	// Log with level ERROR
	Error(...interface{})

	// Log formatted messages with level ERROR
	Errorf(string, ...interface{})

	// Log with level WARN
	Warn(...interface{})

	// Log formatted messages with level WARN
	Warnf(string, ...interface{})

	// Log with level INFO
	Info(...interface{})

	// Log formatted messages with level INFO
	Infof(string, ...interface{})

	// Log with level DEBUG
	Debug(...interface{})

	// Log formatted messages with level DEBUG
	Debugf(string, ...interface{})
}

// DefaultLog provides a default implementation of the Logger
// interface. The zero value logs to the logrus standard logger.
type DefaultLog struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// New creates a DefaultLog with its own logrus logger.
func New() *DefaultLog {
	return &DefaultLog{logger: logrus.New()}
}

func (dl *DefaultLog) entry() *logrus.Entry {
	l := dl.logger
	if l == nil {
		l = logrus.StandardLogger()
	}

	return l.WithFields(dl.fields)
}

// WithFields returns a logger that adds the fields to every entry.
// The receiver is not modified.
func (dl *DefaultLog) WithFields(fields map[string]interface{}) *DefaultLog {
	f := make(logrus.Fields, len(dl.fields)+len(fields))
	for k, v := range dl.fields {
		f[k] = v
	}

	for k, v := range fields {
		f[k] = v
	}

	return &DefaultLog{logger: dl.logger, fields: f}
}

func (dl *DefaultLog) SetOutput(w io.Writer) {
	if dl.logger == nil {
		dl.logger = logrus.New()
	}

	dl.logger.SetOutput(w)
}

func (dl *DefaultLog) SetLevel(level logrus.Level) {
	if dl.logger == nil {
		dl.logger = logrus.New()
	}

	dl.logger.SetLevel(level)
}

func (dl *DefaultLog) SetFormatter(f logrus.Formatter) {
	if dl.logger == nil {
		dl.logger = logrus.New()
	}

	dl.logger.SetFormatter(f)
}

func (dl *DefaultLog) Error(a ...interface{})            { dl.entry().Error(a...) }
func (dl *DefaultLog) Errorf(f string, a ...interface{}) { dl.entry().Errorf(f, a...) }
func (dl *DefaultLog) Warn(a ...interface{})             { dl.entry().Warn(a...) }
func (dl *DefaultLog) Warnf(f string, a ...interface{})  { dl.entry().Warnf(f, a...) }
func (dl *DefaultLog) Info(a ...interface{})             { dl.entry().Info(a...) }
func (dl *DefaultLog) Infof(f string, a ...interface{})  { dl.entry().Infof(f, a...) }
func (dl *DefaultLog) Debug(a ...interface{})            { dl.entry().Debug(a...) }
func (dl *DefaultLog) Debugf(f string, a ...interface{}) { dl.entry().Debugf(f, a...) }

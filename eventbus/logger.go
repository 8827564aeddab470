package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// logrusAdapter routes watermill logs to logrus.
type logrusAdapter struct {
	entry *logrus.Entry
}

func NewLoggerAdapter(logger *logrus.Logger) watermill.LoggerAdapter {
	return &logrusAdapter{
		entry: logrus.NewEntry(logger),
	}
}

func (la *logrusAdapter) Error(msg string, err error, fields watermill.LogFields) {
	la.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (la *logrusAdapter) Info(msg string, fields watermill.LogFields) {
	la.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (la *logrusAdapter) Debug(msg string, fields watermill.LogFields) {
	la.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (la *logrusAdapter) Trace(msg string, fields watermill.LogFields) {
	la.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (la *logrusAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logrusAdapter{
		entry: la.entry.WithFields(logrus.Fields(fields)),
	}
}

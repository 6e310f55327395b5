// Package log provides leveled key-value logging on top of logrus,
// with optional JSON formatting and rotating log files.
package log

import (
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// JSONFormat records whether json log format is enabled.
var JSONFormat bool

func init() {
	logger.SetLevel(logrus.InfoLevel)
	logger.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000",
	}
}

// GetLogger returns the underlying logrus logger.
func GetLogger() *logrus.Logger {
	return logger
}

// SetLogger set log level, json format and color format.
// The verbosity maps onto logrus levels, 0 is panic and 6 is trace.
func SetLogger(verbosity uint32, jsonFormat, colorFormat bool) {
	logger.SetLevel(logrus.Level(verbosity))
	JSONFormat = jsonFormat
	if jsonFormat {
		logger.Formatter = &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000",
		}
	} else {
		logger.Formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000",
			ForceColors:     colorFormat,
			DisableColors:   !colorFormat,
		}
	}
}

// SetLogFile set log file path and rotation.
// logRotation and logMaxAge are in hours.
func SetLogFile(logFile string, logRotation, logMaxAge uint64) {
	if logFile == "" {
		return
	}
	logFile, err := filepath.Abs(logFile)
	if err != nil {
		logger.WithError(err).Fatal("wrong log file path")
	}
	writer, err := rotatelogs.New(
		logFile+".%Y%m%d%H",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithRotationTime(time.Duration(logRotation)*time.Hour),
		rotatelogs.WithMaxAge(time.Duration(logMaxAge)*time.Hour),
	)
	if err != nil {
		logger.WithError(err).Fatal("create rotate logs failed")
	}
	logger.SetOutput(writer)
}

// WithFields encapsulates the key-value context pairs into logrus fields.
func WithFields(ctx ...interface{}) *logrus.Entry {
	length := len(ctx)
	fields := make(logrus.Fields, length/2)
	for k := 0; k+1 < length; k += 2 {
		key, ok := ctx[k].(string)
		if !ok {
			key = "!BADKEY"
		}
		fields[key] = ctx[k+1]
	}
	if length%2 != 0 {
		fields["!ODDCTX"] = ctx[length-1]
	}
	return logger.WithFields(fields)
}

// Trace trace log with key-value context.
func Trace(msg string, ctx ...interface{}) {
	WithFields(ctx...).Trace(msg)
}

// Debug debug log with key-value context.
func Debug(msg string, ctx ...interface{}) {
	WithFields(ctx...).Debug(msg)
}

// Info info log with key-value context.
func Info(msg string, ctx ...interface{}) {
	WithFields(ctx...).Info(msg)
}

// Warn warn log with key-value context.
func Warn(msg string, ctx ...interface{}) {
	WithFields(ctx...).Warn(msg)
}

// Error error log with key-value context.
func Error(msg string, ctx ...interface{}) {
	WithFields(ctx...).Error(msg)
}

// Fatal fatal log with key-value context, then exit.
func Fatal(msg string, ctx ...interface{}) {
	WithFields(ctx...).Fatal(msg)
}

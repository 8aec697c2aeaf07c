package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. Output is JSON so downstream
// collectors can ingest it alongside the audit streams; the audit streams
// themselves are written by pkg/audit, not through this logger.
func NewLogger() *logrus.Logger {
	return newLogger(os.Stderr)
}

// NewLoggerWithOutput is used by commands that direct logs elsewhere.
func NewLoggerWithOutput(out io.Writer) *logrus.Logger {
	return newLogger(out)
}

func newLogger(out io.Writer) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	log.SetOutput(out)
	return log
}

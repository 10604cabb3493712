// Package log builds the logrus logger shared by the certknife commands.
package log

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// SanitizeLogLevel checks and sanitizes logLevel input.
func SanitizeLogLevel(lvl string) logrus.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warning", "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		// silently default to info
		return logrus.InfoLevel
	}
}

// New returns an entry writing timestamped text to w.
func New(w io.Writer, lvl string) *logrus.Entry {
	logger := logrus.New()
	logger.Out = w
	logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	logger.SetLevel(SanitizeLogLevel(lvl))
	return logrus.NewEntry(logger)
}

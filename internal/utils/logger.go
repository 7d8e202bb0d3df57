package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger configures the standard logrus logger from LOG_LEVEL and
// LOG_FILE. The returned func closes the log file, if one was opened.
func InitLogger() func() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(GetConfigOr("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	path := GetConfig("LOG_FILE")
	if path == "" {
		return func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		logrus.WithError(err).Warn("failed to open log file, logging to stderr")
		return func() {}
	}
	logrus.SetOutput(file)
	return func() { _ = file.Close() }
}

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger. Unknown levels fall back to
// info; any format other than "text" logs JSON.
func Init(level, format string) {
	logrus.SetOutput(os.Stdout)

	if format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	logrus.Info("Logger initialized")
}

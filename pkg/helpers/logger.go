package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logrus logger on stdout: text at debug level in
// development, JSON at info elsewhere. A parseable level overrides the
// default. Every entry carries app and env fields.
func NewLogger(appName, env, level string) *logrus.Logger {
	return newLogger(os.Stdout, appName, env, level)
}

func newLogger(out io.Writer, appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.WithField("level", level).Warn("ignoring unknown LOG_LEVEL")
		}
	}
	logger.AddHook(staticFields{"app": appName, "env": env})
	logger.Info("logger initialized")
	return logger
}

// staticFields stamps fixed fields on entries that do not set them.
type staticFields logrus.Fields

func (h staticFields) Levels() []logrus.Level { return logrus.AllLevels }

func (h staticFields) Fire(e *logrus.Entry) error {
	for k, v := range h {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}

// LogError logs msg at error level with err flattened into the fields.
func LogError(logger *logrus.Logger, msg string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.WithFields(fields).Error(msg)
}

func LogInfo(logger *logrus.Logger, msg string, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	logger.WithFields(fields).Info(msg)
}

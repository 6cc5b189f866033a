package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process-wide Logrus logger. Development runs log
// human-readable text at debug level; everything else emits JSON at info
// level so the lines can be shipped as-is.
func NewLogger(appName, env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	switch env {
	case "development":
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	log.WithFields(logrus.Fields{
		"app": appName,
		"env": env,
	}).Info("logger inicializado")
	return log
}

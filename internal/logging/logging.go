package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger
var Logger = logrus.New()

type appNameHook struct {
	appName string
}

// Levels implements logrus.Hook interface.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// Init configures Logger. An empty level falls back to LOG_LEVEL, then info.
func Init(appName, level string) {
	Logger.SetOutput(os.Stdout)

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	level = strings.ToLower(level)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		Logger.Warnf("Invalid log level '%s', defaulting to INFO", level)
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if appName != "" {
		Logger.AddHook(&appNameHook{appName})
	}
}

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	Debug   *logrus.Entry
	Scanner *logrus.Entry
	Clear   *logrus.Entry
	Enabled bool
)

func init() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})

	// Only enable logging if DISKPRUNE_DEBUG environment variable is set
	level := strings.ToLower(os.Getenv("DISKPRUNE_DEBUG"))
	if level == "" {
		logger.SetOutput(io.Discard)
		logger.SetLevel(logrus.PanicLevel)
		setLoggers(logger)
		return
	}

	Enabled = true
	switch level {
	case "trace":
		logger.SetLevel(logrus.TraceLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	default:
		logger.SetLevel(logrus.DebugLevel)
	}

	// The TUI owns the terminal, so log to a file next to the working directory
	debugFile, err := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(debugFile)
	}
	setLoggers(logger)
}

func setLoggers(logger *logrus.Logger) {
	Debug = logger.WithField("component", "app")
	Scanner = logger.WithField("component", "scanner")
	Clear = logger.WithField("component", "clear")
}

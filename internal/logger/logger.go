package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns the process logger. Outside dev mode only warnings and errors
// reach stderr so toasts are not echoed twice.
func Setup(dev bool) zerolog.Logger {
	return SetupWriter(os.Stderr, dev)
}

func SetupWriter(out io.Writer, dev bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Caller().Logger()
	}

	return logger
}

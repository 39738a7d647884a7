package launcher

import (
	"fmt"
	"io"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// sentryLevels are forwarded to Sentry. Warnings are included so lenient
// verify mismatches are reported too.
var sentryLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
}

// NewLogger builds the logger every command hands to the codec.
func NewLogger(cfg Config, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(verbosityLevel(cfg.Log.Verbosity))

	switch cfg.Log.Format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Log.Color,
			DisableColors: !cfg.Log.Color,
			FullTimestamp: true,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (want text|json)", cfg.Log.Format)
	}

	if cfg.Sentry.DSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.Sentry.DSN, sentryLevels)
		if err != nil {
			return nil, fmt.Errorf("sentry hook: %w", err)
		}
		if cfg.Sentry.Timeout > 0 {
			hook.Timeout = cfg.Sentry.Timeout
		}
		logger.AddHook(hook)
	}
	return logger, nil
}

// verbosityLevel maps 0=fatal .. 5=trace onto logrus levels.
func verbosityLevel(v int) logrus.Level {
	switch {
	case v < 0:
		return logrus.PanicLevel
	case v > 5:
		return logrus.TraceLevel
	}
	return logrus.Level(v + 1)
}

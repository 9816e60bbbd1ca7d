//go:build !tinygo

package logx

import (
	"io"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

func init() {
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	std.SetLevel(logrus.InfoLevel)
}

// SetOutput redirects host log output (tests use a buffer).
func SetOutput(w io.Writer) { std.SetOutput(w) }

// Logger exposes the underlying logrus logger for host-only wiring.
func Logger() *logrus.Logger { return std }

func setBackendLevel(l Level) {
	switch l {
	case LevelDebug:
		std.SetLevel(logrus.DebugLevel)
	case LevelWarn:
		std.SetLevel(logrus.WarnLevel)
	case LevelError:
		std.SetLevel(logrus.ErrorLevel)
	default:
		std.SetLevel(logrus.InfoLevel)
	}
}

func write(l Level, comp, msg string, kv []any) {
	f := logrus.Fields{"component": comp}
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[k] = kv[i+1]
	}
	e := std.WithFields(f)
	switch l {
	case LevelDebug:
		e.Debug(msg)
	case LevelWarn:
		e.Warn(msg)
	case LevelError:
		e.Error(msg)
	default:
		e.Info(msg)
	}
}

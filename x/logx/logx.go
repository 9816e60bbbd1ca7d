// Package logx is the firmware's diagnostic log. Lines are human-readable
// and carry a component tag plus optional key/value pairs:
//
//	logx.Info("central", "discovered", "uuid", 0xa001)
//
// MCU builds print through the runtime println; host builds go through logrus.
package logx

import "strings"

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var level = LevelInfo

// ParseLevel maps "debug", "info", "warn", "error" to a Level (default info).
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel sets the minimum level that is emitted.
func SetLevel(l Level) {
	level = l
	setBackendLevel(l)
}

func Enabled(l Level) bool { return l >= level }

func Debug(comp, msg string, kv ...any) { emit(LevelDebug, comp, msg, kv) }
func Info(comp, msg string, kv ...any)  { emit(LevelInfo, comp, msg, kv) }
func Warn(comp, msg string, kv ...any)  { emit(LevelWarn, comp, msg, kv) }
func Error(comp, msg string, kv ...any) { emit(LevelError, comp, msg, kv) }

func emit(l Level, comp, msg string, kv []any) {
	if !Enabled(l) {
		return
	}
	write(l, comp, msg, kv)
}

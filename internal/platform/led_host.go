//go:build !tinygo

package platform

import (
	"sync"

	"hapticlink/x/logx"
)

// LED stands in for the board LED on hosts. It remembers its level and logs
// changes at debug level.
type LED struct {
	mu sync.Mutex
	on bool
}

func NewLED() *LED { return &LED{} }

func (l *LED) Set(on bool) {
	l.mu.Lock()
	l.on = on
	l.mu.Unlock()
	logx.Debug("led", "set", "on", on)
}

func (l *LED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

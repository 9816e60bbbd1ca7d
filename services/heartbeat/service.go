package heartbeat

import (
	"context"
	"time"

	"hapticlink/bus"
	"hapticlink/types"
	"hapticlink/x/logx"
	"hapticlink/x/timex"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

// Config is the payload expected on config/heartbeat.
type Config struct {
	Interval time.Duration
}

// Service posts a types.Tick to the firmware loop on every period.
type Service struct {
	Interval time.Duration
	Post     func(types.Event) bool
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	var cfgCh <-chan *bus.Message
	if conn != nil {
		cfgSub := conn.Subscribe(topicConfigHeartbeat)
		defer conn.Unsubscribe(cfgSub)
		cfgCh = cfgSub.Channel()
	}

	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			logx.Info("heartbeat", "stopping")
			return
		case <-tick.C:
			s.Post(types.Tick{TSms: timex.NowMs()})
		case msg := <-cfgCh:
			if msg == nil {
				continue
			}
			if c, ok := msg.Payload.(Config); ok && c.Interval > 0 && c.Interval != interval {
				interval = c.Interval
				tick.Reset(interval)
				logx.Info("heartbeat", "interval set", "ms", int64(interval/time.Millisecond))
			}
		}
	}
}

// Start the heartbeat service. conn may be nil when no reconfiguration is needed.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

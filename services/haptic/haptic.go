// Package haptic turns advertisement activity into actuator effects. Any
// number of advertisements between two ticks collapse into one effect,
// played on the next tick.
package haptic

import (
	"hapticlink/bus"
	"hapticlink/drivers/drv2605"
	"hapticlink/errcode"
	"hapticlink/types"
	"hapticlink/x/logx"
	"hapticlink/x/timex"
)

const comp = "haptic"

// Actuator is the subset of *drv2605.Device the service uses.
type Actuator interface {
	Configure(cfgs ...drv2605.Config) error
	Diag() drv2605.Diag
	TriggerEffect(id uint8) error
	Playing() (bool, error)
}

// Indicator is the liveness output flipped on every tick (machine.Pin fits).
type Indicator interface {
	Set(on bool)
}

type Options struct {
	// Effect is the library effect played per trigger. Default 1.
	Effect uint8
	// SkipWhilePlaying reads GO before triggering and drops the trigger if
	// the previous effect has not finished. Off by default: a new trigger
	// overwrites the sequencer and restarts playback.
	SkipWhilePlaying bool
	Driver           drv2605.Config
}

type Service struct {
	act  Actuator
	led  Indicator
	opts Options
	conn *bus.Connection // optional telemetry

	ready   bool
	pending bool
	alive   bool
	effects uint32
	lastErr string
}

func New(act Actuator, led Indicator, opts Options, conn *bus.Connection) *Service {
	if opts.Effect == 0 {
		opts.Effect = 1
	}
	return &Service{act: act, led: led, opts: opts, conn: conn, alive: true}
}

// Setup runs the actuator start-up sequence. A failure is logged and
// returned; the service keeps working against whatever state the chip is in.
func (s *Service) Setup() error {
	logx.Info(comp, "configuring actuator", "addr", uint8(drv2605.Address))
	err := s.act.Configure(s.opts.Driver)
	if err != nil {
		s.lastErr = err.Error()
		logx.Error(comp, "actuator setup failed", "step", errcode.OpOf(err), "err", err)
	} else {
		d := s.act.Diag()
		logx.Info(comp, "actuator ready", "status", d.Status, "feedback", d.Feedback, "control3", d.Control3)
		s.ready = true
	}
	s.publishState()
	return err
}

func (s *Service) Ready() bool     { return s.ready }
func (s *Service) Pending() bool   { return s.pending }
func (s *Service) Effects() uint32 { return s.effects }

// Request marks an effect as due on the next tick.
func (s *Service) Request() { s.pending = true }

// Tick flips the liveness indicator and plays at most one pending effect.
func (s *Service) Tick() {
	s.alive = !s.alive
	if s.led != nil {
		s.led.Set(s.alive)
	}
	if !s.pending {
		return
	}
	s.pending = false

	if s.opts.SkipWhilePlaying {
		busy, err := s.act.Playing()
		if err == nil && busy {
			logx.Debug(comp, "effect skipped, still playing")
			return
		}
	}
	if err := s.act.TriggerEffect(s.opts.Effect); err != nil {
		s.lastErr = err.Error()
		logx.Warn(comp, "effect failed", "effect", s.opts.Effect, "err", err)
		s.publishState()
		return
	}
	s.effects++
	if s.conn != nil {
		s.conn.Publish(s.conn.NewMessage(bus.T("event", "effect"),
			types.EffectEvent{Effect: s.opts.Effect, TSms: timex.NowMs()}, false))
	}
	s.publishState()
}

// HandleEvent reacts to advertisements and ticks; other events are ignored.
func (s *Service) HandleEvent(ev types.Event) {
	switch ev.(type) {
	case types.AdvertisementSeen:
		s.Request()
	case types.Tick:
		s.Tick()
	}
}

func (s *Service) publishState() {
	if s.conn == nil {
		return
	}
	s.conn.Publish(s.conn.NewMessage(bus.T("state", comp),
		types.HapticState{Ready: s.ready, Effects: s.effects, Error: s.lastErr, TSms: timex.NowMs()}, true))
}

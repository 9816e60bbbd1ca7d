// Package bridge mirrors firmware telemetry from the internal bus into an
// external key/value store (redis on hosts). Every state/# and event/#
// message becomes a set of hash fields under one key plus a change
// notification on a channel of the same name.
package bridge

import (
	"context"
	"fmt"
	"time"

	"hapticlink/bus"
	"hapticlink/types"
	"hapticlink/x/logx"
)

const comp = "bridge"

var (
	topicState  = bus.T("bridge", "state")
	mirrorState = bus.T("state", "#")
	mirrorEvent = bus.T("event", "#")
)

// Field is one hash field written to the store.
type Field struct {
	Name  string
	Value string
}

// Store receives mirrored fields. Mirror must write all fields and announce
// them atomically enough that readers never see a half-applied message.
type Store interface {
	Mirror(ctx context.Context, key string, fields []Field) error
	Close() error
}

// Dialer opens a Store. It is retried with backoff until it succeeds.
type Dialer func(ctx context.Context) (Store, error)

type Service struct {
	conn *bus.Connection
	dial Dialer
	key  string

	minBackoff time.Duration
	maxBackoff time.Duration
}

func New(conn *bus.Connection, key string, dial Dialer) *Service {
	if key == "" {
		key = "hapticlink"
	}
	return &Service{
		conn:       conn,
		dial:       dial,
		key:        key,
		minBackoff: 250 * time.Millisecond,
		maxBackoff: 5 * time.Second,
	}
}

// Start runs the bridge until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	stSub := s.conn.Subscribe(mirrorState)
	evSub := s.conn.Subscribe(mirrorEvent)
	defer s.conn.Unsubscribe(stSub)
	defer s.conn.Unsubscribe(evSub)

	s.publishState("idle", "dialing", nil)

	backoff := backoffSeq(s.minBackoff, s.maxBackoff)
	for {
		st, err := s.dial(ctx)
		if err != nil {
			delay := backoff()
			s.publishState("degraded", "dial_failed_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		s.publishState("up", "link_established", nil)
		err = s.forward(ctx, st, stSub, evSub)
		_ = st.Close()
		if err == nil {
			return
		}
		delay := backoff()
		s.publishState("degraded", "link_lost_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
		if !sleep(ctx, delay) {
			return
		}
	}
}

// forward copies bus messages into st until ctx ends (nil) or a write fails.
// The failing message is lost; retained state is re-sent by later updates.
func (s *Service) forward(ctx context.Context, st Store, subs ...*bus.Subscription) error {
	for {
		var msg *bus.Message
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case msg, ok = <-subs[0].Channel():
		case msg, ok = <-subs[1].Channel():
		}
		if !ok {
			return nil
		}
		fields := Fields(msg.Topic, msg.Payload)
		if len(fields) == 0 {
			continue
		}
		if err := st.Mirror(ctx, s.key, fields); err != nil {
			logx.Warn(comp, "mirror failed", "topic", msg.Topic.String(), "err", err)
			return err
		}
	}
}

// Fields flattens a telemetry payload into hash fields named
// "<topic tail>:<name>", e.g. "central:state". Unknown payloads yield nil.
func Fields(t bus.Topic, payload any) []Field {
	if t.Len() < 2 {
		return nil
	}
	prefix := t[1:].String()
	f := func(name, v string) Field { return Field{Name: prefix + ":" + name, Value: v} }

	switch p := payload.(type) {
	case types.CentralState:
		return []Field{
			f("state", p.State),
			f("handle", fmt.Sprint(uint16(p.Handle))),
		}
	case types.HapticState:
		return []Field{
			f("ready", fmt.Sprint(p.Ready)),
			f("effects", fmt.Sprint(p.Effects)),
			f("error", p.Error),
		}
	case types.ToggleEvent:
		return []Field{
			f("handle", fmt.Sprint(uint16(p.Handle))),
			f("value", fmt.Sprint(p.To)),
		}
	case types.EffectEvent:
		return []Field{
			f("effect", fmt.Sprint(p.Effect)),
			f("ts_ms", fmt.Sprint(p.TSms)),
		}
	case string:
		return []Field{{Name: prefix, Value: p}}
	}
	return nil
}

func (s *Service) publishState(level, status string, err error) {
	payload := map[string]any{
		"level":  level,
		"status": status,
		"ts_ms":  time.Now().UnixMilli(),
	}
	if err != nil {
		payload["error"] = err.Error()
		logx.Warn(comp, status, "err", err)
	} else {
		logx.Info(comp, status)
	}
	s.conn.Publish(s.conn.NewMessage(topicState, payload, true))
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	cur := min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

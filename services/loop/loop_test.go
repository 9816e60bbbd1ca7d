package loop

import (
	"context"
	"testing"
	"time"

	"hapticlink/drivers/drv2605"
	"hapticlink/services/central"
	"hapticlink/services/haptic"
	"hapticlink/types"
)

type recorder struct {
	events []types.Event
	polls  int
}

func (r *recorder) HandleEvent(ev types.Event) { r.events = append(r.events, ev) }
func (r *recorder) Poll()                      { r.polls++ }

type gattFake struct {
	reads  []types.Handle
	writes [][]byte
}

func (g *gattFake) Connect(string) error { return nil }
func (g *gattFake) LaunchDiscovery(types.ConnHandle, types.UUID16, types.UUID16) error {
	return nil
}
func (g *gattFake) DiscoveryActive() bool       { return false }
func (g *gattFake) Read(h types.Handle) error   { g.reads = append(g.reads, h); return nil }
func (g *gattFake) Write(_ types.Handle, v []byte) error {
	g.writes = append(g.writes, append([]byte(nil), v...))
	return nil
}

type actFake struct{ triggers int }

func (a *actFake) Configure(...drv2605.Config) error { return nil }
func (a *actFake) Diag() drv2605.Diag                { return drv2605.Diag{} }
func (a *actFake) TriggerEffect(uint8) error         { a.triggers++; return nil }
func (a *actFake) Playing() (bool, error)            { return false, nil }

func TestDrainDispatchesInOrderAndPolls(t *testing.T) {
	r := &recorder{}
	l := New(4, r)
	l.Post(types.Tick{TSms: 1})
	l.Post(types.Tick{TSms: 2})
	if n := l.Drain(); n != 2 {
		t.Fatalf("Drain = %d", n)
	}
	if r.polls != 2 {
		t.Fatalf("polls = %d", r.polls)
	}
	if r.events[0].(types.Tick).TSms != 1 || r.events[1].(types.Tick).TSms != 2 {
		t.Fatalf("order = %v", r.events)
	}
}

func TestAdvertisementsCoalesceInQueue(t *testing.T) {
	r := &recorder{}
	l := New(2, r)
	if !l.Post(types.AdvertisementSeen{Addr: "AA"}) {
		t.Fatal("first advertisement not queued")
	}
	for i := 0; i < 10; i++ {
		if l.Post(types.AdvertisementSeen{Addr: "BB"}) {
			t.Fatal("second advertisement queued while one is waiting")
		}
	}
	l.Post(types.Tick{})
	if l.Coalesced() != 10 || l.Pending() != 2 {
		t.Fatalf("coalesced=%d pending=%d", l.Coalesced(), l.Pending())
	}
	l.Drain()
	if !l.Post(types.AdvertisementSeen{Addr: "CC"}) {
		t.Fatal("advertisement after dispatch not queued")
	}
	if r.events[0].(types.AdvertisementSeen).Addr != "AA" {
		t.Fatalf("events = %v", r.events)
	}
}

func TestOtherEventsGrowPastCapacity(t *testing.T) {
	r := &recorder{}
	l := New(2, r)
	for i := 0; i < 50; i++ {
		if !l.Post(types.ReadComplete{Handle: types.Handle(i + 1)}) {
			t.Fatalf("completion %d not queued", i)
		}
	}
	if n := l.Drain(); n != 50 {
		t.Fatalf("Drain = %d, want 50", n)
	}
	for i, ev := range r.events {
		if ev.(types.ReadComplete).Handle != types.Handle(i+1) {
			t.Fatalf("event %d out of order: %v", i, ev)
		}
	}
}

func TestRunDispatchesPostedEvents(t *testing.T) {
	got := make(chan types.Event, 4)
	l := New(4, handlerFunc(func(ev types.Event) { got <- ev }))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	l.Post(types.Tick{TSms: 7})
	select {
	case ev := <-got:
		if ev.(types.Tick).TSms != 7 {
			t.Fatalf("event = %v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not dispatch posted event")
	}
}

type handlerFunc func(types.Event)

func (f handlerFunc) HandleEvent(ev types.Event) { f(ev) }

func TestRunStopsOnCancel(t *testing.T) {
	r := &recorder{}
	l := New(4, r)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	l.Post(types.Tick{})
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// The whole firmware flow against fakes: advertisements coalesce into one
// effect per tick, and discovery leads into the toggle cycle.
func TestFirmwareFlow(t *testing.T) {
	g := &gattFake{}
	act := &actFake{}
	c := central.New(g, central.DefaultOptions(), nil)
	h := haptic.New(act, nil, haptic.Options{}, nil)
	l := New(0, c, h)

	for i := 0; i < 5; i++ {
		l.Post(types.AdvertisementSeen{Addr: "AA"})
	}
	l.Post(types.Tick{})
	l.Post(types.Tick{})
	l.Drain()
	if act.triggers != 1 {
		t.Fatalf("triggers = %d, want 1", act.triggers)
	}

	l.Post(types.Connected{Conn: 1, Role: types.RoleCentral})
	l.Post(types.CharacteristicDiscovered{UUID: 0xa001, Handle: 12})
	l.Drain()
	if len(g.reads) != 1 || g.reads[0] != 12 {
		t.Fatalf("reads = %v", g.reads)
	}

	l.Post(types.ReadComplete{Handle: 12, Data: []byte{0x01}})
	l.Post(types.WriteComplete{Handle: 12})
	l.Drain()
	if len(g.writes) != 1 || g.writes[0][0] != 0x00 {
		t.Fatalf("writes = %v", g.writes)
	}
	if len(g.reads) != 2 {
		t.Fatalf("reads = %v", g.reads)
	}
}

// floodClient answers every read and write through the loop, with a burst
// of advertisements arriving before each completion.
type floodClient struct {
	l      *Loop
	value  byte
	reads  int
	writes int
}

func (c *floodClient) burst() {
	for i := 0; i < 32; i++ {
		c.l.Post(types.AdvertisementSeen{Addr: "AA"})
	}
}

func (c *floodClient) Connect(string) error { return nil }
func (c *floodClient) LaunchDiscovery(types.ConnHandle, types.UUID16, types.UUID16) error {
	return nil
}
func (c *floodClient) DiscoveryActive() bool { return false }

func (c *floodClient) Read(h types.Handle) error {
	c.reads++
	c.burst()
	c.l.Post(types.ReadComplete{Handle: h, Data: []byte{c.value}})
	return nil
}

func (c *floodClient) Write(h types.Handle, v []byte) error {
	c.writes++
	c.value = v[0]
	c.burst()
	c.l.Post(types.WriteComplete{Handle: h})
	return nil
}

func TestToggleCycleSurvivesAdvertisementFlood(t *testing.T) {
	fc := &floodClient{}
	act := &actFake{}
	c := central.New(fc, central.DefaultOptions(), nil)
	h := haptic.New(act, nil, haptic.Options{}, nil)
	l := New(4, c, h)
	fc.l = l

	l.Post(types.Connected{Conn: 1, Role: types.RoleCentral})
	l.Post(types.CharacteristicDiscovered{UUID: 0xa001, Handle: 7})
	for i := 0; i < 10; i++ {
		if i == 5 {
			l.Post(types.Tick{})
		}
		l.Drain()
	}

	if c.State() != central.Toggling {
		t.Fatalf("state = %s", c.State())
	}
	if fc.writes < 4 || fc.reads < fc.writes || c.Toggles() != uint32(fc.writes) {
		t.Fatalf("reads=%d writes=%d toggles=%d", fc.reads, fc.writes, c.Toggles())
	}
	if want := byte(fc.writes % 2); fc.value != want {
		t.Fatalf("value = %d after %d writes, want %d", fc.value, fc.writes, want)
	}
	if act.triggers != 1 {
		t.Fatalf("triggers = %d, want 1 for the single tick", act.triggers)
	}
	if l.Coalesced() == 0 {
		t.Fatal("flood was not coalesced")
	}
}

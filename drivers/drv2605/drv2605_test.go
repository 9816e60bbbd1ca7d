package drv2605

import (
	"bytes"
	"errors"
	"testing"

	"hapticlink/errcode"
)

type tx struct {
	addr uint16
	w    []byte
	rlen int
}

// fakeBus is a register-file model of the chip that records every transaction.
type fakeBus struct {
	regs   map[byte]byte
	sel    byte
	log    []tx
	failAt int // 1-based transaction index that fails; 0 = never
}

var errNack = errors.New("nack")

func newFakeBus() *fakeBus {
	return &fakeBus{regs: map[byte]byte{}}
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.log = append(b.log, tx{addr: addr, w: append([]byte(nil), w...), rlen: len(r)})
	if b.failAt != 0 && len(b.log) == b.failAt {
		return errNack
	}
	switch {
	case len(w) == 1:
		b.sel = w[0]
	case len(w) >= 2:
		b.regs[w[0]] = w[1]
	}
	for i := range r {
		r[i] = b.regs[b.sel]
	}
	return nil
}

// writes returns the [reg, val] pairs from the log in order.
func (b *fakeBus) writes() [][2]byte {
	var out [][2]byte
	for _, t := range b.log {
		if len(t.w) == 2 {
			out = append(out, [2]byte{t.w[0], t.w[1]})
		}
	}
	return out
}

func configureSequence(fb, c3 byte) []tx {
	return []tx{
		{Address, []byte{regStatus}, 0},
		{Address, []byte{}, 1},
		{Address, []byte{regMode, 0x00}, 0},
		{Address, []byte{regRTPIn, 0x00}, 0},
		{Address, []byte{regWaveSeq1, 0x01}, 0},
		{Address, []byte{regWaveSeq2, 0x00}, 0},
		{Address, []byte{regOverdrive, 0x00}, 0},
		{Address, []byte{regSustainPos, 0x00}, 0},
		{Address, []byte{regSustainNeg, 0x00}, 0},
		{Address, []byte{regBrake, 0x00}, 0},
		{Address, []byte{regBrake, 0x64}, 0},
		{Address, []byte{regFeedback}, 0},
		{Address, []byte{}, 1},
		{Address, []byte{regFeedback, fb & 0x7F}, 0},
		{Address, []byte{regControl3}, 0},
		{Address, []byte{}, 1},
		{Address, []byte{regControl3, c3 | 0x20}, 0},
		{Address, []byte{regMode, 0x00}, 0},
		{Address, []byte{regLibrary, 0x01}, 0},
	}
}

func sameTx(a, b tx) bool {
	return a.addr == b.addr && a.rlen == b.rlen && bytes.Equal(a.w, b.w)
}

func TestConfigureSequence(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regStatus] = 0xE0
	bus.regs[regFeedback] = 0xB6
	bus.regs[regControl3] = 0x80

	d := New(bus)
	if err := d.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	want := configureSequence(0xB6, 0x80)
	if len(bus.log) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(bus.log), len(want))
	}
	for i := range want {
		if !sameTx(bus.log[i], want[i]) {
			t.Fatalf("tx %d = %+v, want %+v", i+1, bus.log[i], want[i])
		}
	}

	if bus.regs[regFeedback] != 0x36 {
		t.Fatalf("FEEDBACK = %#x, want 0x36 (top bit cleared, rest kept)", bus.regs[regFeedback])
	}
	if bus.regs[regControl3] != 0xA0 {
		t.Fatalf("CONTROL3 = %#x, want 0xA0", bus.regs[regControl3])
	}
	if got := d.Diag(); got != (Diag{Status: 0xE0, Feedback: 0xB6, Control3: 0x80}) {
		t.Fatalf("Diag = %+v", got)
	}
}

func TestConfigureOverrides(t *testing.T) {
	bus := newFakeBus()
	d := New(bus)
	if err := d.Configure(Config{BrakeTime: 0x20, Library: 6}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if bus.regs[regBrake] != 0x20 || bus.regs[regLibrary] != 6 {
		t.Fatalf("BRAKE=%#x LIBRARY=%d", bus.regs[regBrake], bus.regs[regLibrary])
	}
}

func TestConfigureAbortsOnFirstFailure(t *testing.T) {
	total := len(configureSequence(0, 0))
	for fail := 1; fail <= total; fail++ {
		bus := newFakeBus()
		bus.failAt = fail
		err := New(bus).Configure()
		if err == nil {
			t.Fatalf("failAt=%d: expected error", fail)
		}
		if !errors.Is(err, errNack) {
			t.Fatalf("failAt=%d: error %v does not wrap cause", fail, err)
		}
		if errcode.Of(err) != errcode.BusError {
			t.Fatalf("failAt=%d: code = %q", fail, errcode.Of(err))
		}
		if len(bus.log) != fail {
			t.Fatalf("failAt=%d: %d transactions issued, want %d", fail, len(bus.log), fail)
		}
	}
}

func TestConfigureFailureNamesStep(t *testing.T) {
	cases := []struct {
		failAt int
		op     string
	}{
		{1, "select STATUS"},
		{2, "read STATUS"},
		{3, "write MODE"},
		{11, "write BRAKE"},
		{13, "read FEEDBACK"},
		{17, "write CONTROL3"},
		{19, "write LIBRARY"},
	}
	for _, c := range cases {
		bus := newFakeBus()
		bus.failAt = c.failAt
		err := New(bus).Configure()
		if got := errcode.OpOf(err); got != c.op {
			t.Fatalf("failAt=%d: op = %q, want %q", c.failAt, got, c.op)
		}
	}
}

func TestTriggerEffectAllIDs(t *testing.T) {
	for id := 0; id <= 255; id++ {
		bus := newFakeBus()
		if err := New(bus).TriggerEffect(uint8(id)); err != nil {
			t.Fatalf("id=%d: %v", id, err)
		}
		want := [][2]byte{{regWaveSeq1, byte(id)}, {regWaveSeq2, 0}, {regGo, 1}}
		got := bus.writes()
		if len(got) != len(want) || len(bus.log) != len(want) {
			t.Fatalf("id=%d: writes = %v, want %v", id, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("id=%d: write %d = %v, want %v", id, i, got[i], want[i])
			}
		}
	}
}

func TestTriggerEffectAbortsOnFailure(t *testing.T) {
	for fail := 1; fail <= 3; fail++ {
		bus := newFakeBus()
		bus.failAt = fail
		if err := New(bus).TriggerEffect(7); err == nil {
			t.Fatalf("failAt=%d: expected error", fail)
		}
		if len(bus.log) != fail {
			t.Fatalf("failAt=%d: %d transactions, want %d", fail, len(bus.log), fail)
		}
	}
}

// nopBus accepts every transaction without recording it.
type nopBus struct{}

func (nopBus) Tx(uint16, []byte, []byte) error { return nil }

func TestRegisterAccessDoesNotAllocate(t *testing.T) {
	d := New(nopBus{})
	if n := testing.AllocsPerRun(100, func() { _ = d.TriggerEffect(1) }); n != 0 {
		t.Fatalf("TriggerEffect allocates %.0f times per call", n)
	}
	if n := testing.AllocsPerRun(100, func() { _, _ = d.Playing() }); n != 0 {
		t.Fatalf("Playing allocates %.0f times per call", n)
	}
}

func TestPlaying(t *testing.T) {
	bus := newFakeBus()
	d := New(bus)
	if err := d.TriggerEffect(1); err != nil {
		t.Fatal(err)
	}
	on, err := d.Playing()
	if err != nil || !on {
		t.Fatalf("Playing = %v, %v; want true", on, err)
	}
	if err := d.Stop(); err != nil {
		t.Fatal(err)
	}
	if on, _ := d.Playing(); on {
		t.Fatal("Playing after Stop = true")
	}
}

func TestSetWaveformRange(t *testing.T) {
	bus := newFakeBus()
	d := New(bus)
	if err := d.SetWaveform(WaveSlots, 1); err != ErrSlot {
		t.Fatalf("slot %d: err = %v, want ErrSlot", WaveSlots, err)
	}
	if err := d.SetWaveform(7, 47); err != nil {
		t.Fatal(err)
	}
	if bus.regs[regWaveSeq8] != 47 {
		t.Fatalf("WAVESEQ8 = %d", bus.regs[regWaveSeq8])
	}
}

func TestActuatorSelection(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regFeedback] = 0x36
	d := New(bus)
	if err := d.UseLRA(); err != nil {
		t.Fatal(err)
	}
	if bus.regs[regFeedback] != 0xB6 {
		t.Fatalf("after UseLRA FEEDBACK = %#x", bus.regs[regFeedback])
	}
	if err := d.UseERM(); err != nil {
		t.Fatal(err)
	}
	if bus.regs[regFeedback] != 0x36 {
		t.Fatalf("after UseERM FEEDBACK = %#x", bus.regs[regFeedback])
	}
}

func TestRegisterName(t *testing.T) {
	if RegisterName(regGo) != "GO" || RegisterName(0xFF) != "" {
		t.Fatal("unexpected register names")
	}
}

package platform

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"hapticlink/types"
	"hapticlink/x/logx"

	"tinygo.org/x/bluetooth"
)

var (
	ErrUnknownPeer   = errors.New("gatt: peer address not seen while scanning")
	ErrUnknownConn   = errors.New("gatt: unknown connection")
	ErrUnknownHandle = errors.New("gatt: unknown characteristic handle")
	ErrDiscoveryBusy = errors.New("gatt: discovery already running")
)

// maxSeen bounds the scan address cache kept for Connect.
const maxSeen = 16

// GATT adapts tinygo.org/x/bluetooth to the central handler. Every callback
// from the stack is turned into an event and posted to the firmware loop.
type GATT struct {
	adapter *bluetooth.Adapter
	post    func(types.Event) bool

	mu       sync.Mutex
	seen     map[string]bluetooth.Address
	conns    map[types.ConnHandle]*bluetooth.Device
	chars    map[types.Handle]*bluetooth.DeviceCharacteristic
	nextConn types.ConnHandle
	nextChar types.Handle

	discovering atomic.Bool
	rbuf        [20]byte
}

func NewGATT(adapter *bluetooth.Adapter, post func(types.Event) bool) *GATT {
	return &GATT{
		adapter: adapter,
		post:    post,
		seen:    make(map[string]bluetooth.Address),
		conns:   make(map[types.ConnHandle]*bluetooth.Device),
		chars:   make(map[types.Handle]*bluetooth.DeviceCharacteristic),
	}
}

// Enable powers the radio and installs the link-loss handler.
func (g *GATT) Enable() error {
	if err := g.adapter.Enable(); err != nil {
		return err
	}
	// The disconnect callback does not carry a usable peer address on every
	// port, so link loss drops every connection we hold. Connect allows only
	// one attempt at a time, which keeps that to a single link in practice.
	g.adapter.SetConnectHandler(func(_ bluetooth.Device, connected bool) {
		if !connected {
			g.linkLost()
		}
	})
	return nil
}

// linkLost forgets every connection and the characteristics discovered on
// them, then posts one Disconnected per connection. Handle numbers keep
// increasing so a stale handle never aliases a new characteristic.
func (g *GATT) linkLost() {
	g.mu.Lock()
	lost := make([]types.ConnHandle, 0, len(g.conns))
	for ch := range g.conns {
		lost = append(lost, ch)
		delete(g.conns, ch)
	}
	for h := range g.chars {
		delete(g.chars, h)
	}
	g.mu.Unlock()
	for _, ch := range lost {
		g.post(types.Disconnected{Conn: ch})
	}
}

// Scan starts scanning in the background and stops when ctx is done.
// interval and window are informational; the stack picks its own timing.
func (g *GATT) Scan(ctx context.Context, intervalMS, windowMS int64) {
	logx.Info("gatt", "scan start", "interval_ms", intervalMS, "window_ms", windowMS)
	go func() {
		err := g.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
			addr := r.Address.String()
			g.remember(addr, r.Address)
			g.post(types.AdvertisementSeen{
				Addr:      addr,
				RSSI:      r.RSSI,
				LocalName: r.LocalName(),
			})
		})
		if err != nil {
			logx.Error("gatt", "scan failed", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = g.adapter.StopScan()
	}()
}

func (g *GATT) remember(addr string, a bluetooth.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[addr]; !ok && len(g.seen) >= maxSeen {
		g.seen = make(map[string]bluetooth.Address)
	}
	g.seen[addr] = a
}

// Connect dials addr in the background. The result arrives as Connected or
// ConnectFailed.
func (g *GATT) Connect(addr string) error {
	g.mu.Lock()
	a, ok := g.seen[addr]
	g.mu.Unlock()
	if !ok {
		return ErrUnknownPeer
	}
	go func() {
		dev, err := g.adapter.Connect(a, bluetooth.ConnectionParams{})
		if err != nil {
			g.post(types.ConnectFailed{Addr: addr, Err: err})
			return
		}
		g.mu.Lock()
		g.nextConn++
		ch := g.nextConn
		g.conns[ch] = &dev
		g.mu.Unlock()
		g.post(types.Connected{Conn: ch, Role: types.RoleCentral, Addr: addr})
	}()
	return nil
}

// LaunchDiscovery walks the 16-bit services in [start, end] in the
// background, posting one event per service and characteristic and a final
// DiscoveryTerminated. DiscoveryActive is cleared before that last event.
func (g *GATT) LaunchDiscovery(conn types.ConnHandle, start, end types.UUID16) error {
	g.mu.Lock()
	dev, ok := g.conns[conn]
	g.mu.Unlock()
	if !ok {
		return ErrUnknownConn
	}
	if !g.discovering.CompareAndSwap(false, true) {
		return ErrDiscoveryBusy
	}
	go func() {
		g.discover(dev, start, end)
		g.discovering.Store(false)
		g.post(types.DiscoveryTerminated{Conn: conn})
	}()
	return nil
}

func (g *GATT) discover(dev *bluetooth.Device, start, end types.UUID16) {
	svcs, err := dev.DiscoverServices(nil)
	if err != nil {
		logx.Warn("gatt", "service discovery failed", "err", err)
		return
	}
	for i := range svcs {
		u := svcs[i].UUID()
		if !u.Is16Bit() {
			continue
		}
		su := types.UUID16(u.Get16Bit())
		if su < start || su > end {
			continue
		}
		g.post(types.ServiceDiscovered{UUID: su})

		chars, err := svcs[i].DiscoverCharacteristics(nil)
		if err != nil {
			logx.Warn("gatt", "characteristic discovery failed", "service", uint16(su), "err", err)
			continue
		}
		for j := range chars {
			cu := chars[j].UUID()
			if !cu.Is16Bit() {
				continue
			}
			h := g.addChar(chars[j])
			g.post(types.CharacteristicDiscovered{UUID: types.UUID16(cu.Get16Bit()), Handle: h})
		}
	}
}

func (g *GATT) addChar(c bluetooth.DeviceCharacteristic) types.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextChar++
	if g.nextChar == 0 {
		g.nextChar = 1
	}
	g.chars[g.nextChar] = &c
	return g.nextChar
}

func (g *GATT) DiscoveryActive() bool { return g.discovering.Load() }

func (g *GATT) char(h types.Handle) (*bluetooth.DeviceCharacteristic, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.chars[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return c, nil
}

// Read reads the characteristic and posts ReadComplete.
func (g *GATT) Read(h types.Handle) error {
	c, err := g.char(h)
	if err != nil {
		return err
	}
	n, err := c.Read(g.rbuf[:])
	if err != nil {
		return err
	}
	data := make([]byte, n)
	copy(data, g.rbuf[:n])
	g.post(types.ReadComplete{Handle: h, Data: data})
	return nil
}

// Write sends value and posts WriteComplete once the stack accepted it.
func (g *GATT) Write(h types.Handle, value []byte) error {
	c, err := g.char(h)
	if err != nil {
		return err
	}
	if _, err := c.WriteWithoutResponse(value); err != nil {
		return err
	}
	g.post(types.WriteComplete{Handle: h})
	return nil
}

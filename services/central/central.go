// Package central implements the BLE central side of the firmware: discover
// one characteristic on a connected peer and keep toggling its low bit with a
// read → xor → write → read cycle.
//
// All methods run on the firmware loop goroutine; nothing here is locked.
package central

import (
	"hapticlink/bus"
	"hapticlink/types"
	"hapticlink/x/logx"
	"hapticlink/x/timex"
)

const comp = "central"

// State is the handler's position in the discover/toggle cycle.
type State uint8

const (
	Idle        State = iota
	Discovering       // discovery launched on a central link
	PendingRead       // target captured, first read not yet issued
	Toggling          // read/write cycle running
)

func (s State) String() string {
	switch s {
	case Discovering:
		return "discovering"
	case PendingRead:
		return "pending_read"
	case Toggling:
		return "toggling"
	default:
		return "idle"
	}
}

// Client is the GATT client surface the handler drives. Reads and writes are
// asynchronous: completions come back as ReadComplete / WriteComplete events.
type Client interface {
	Connect(addr string) error
	LaunchDiscovery(conn types.ConnHandle, start, end types.UUID16) error
	DiscoveryActive() bool
	Read(h types.Handle) error
	Write(h types.Handle, value []byte) error
}

// Options selects the peer and characteristic.
type Options struct {
	// Target is the characteristic whose value is toggled.
	Target types.UUID16
	// RangeStart and RangeEnd bound service discovery.
	RangeStart types.UUID16
	RangeEnd   types.UUID16
	// PeerName, when set, makes the handler connect to the first advertiser
	// with this local name. Empty means never initiate connections.
	PeerName string
}

// DefaultOptions matches the stock peripheral (services 0xa000-0xa001,
// toggle characteristic 0xa001).
func DefaultOptions() Options {
	return Options{Target: 0xa001, RangeStart: 0xa000, RangeEnd: 0xa001}
}

type Handler struct {
	client Client
	opts   Options
	conn   *bus.Connection // optional telemetry

	state      State
	handle     types.Handle
	connected  bool
	connecting bool
	toggles    uint32
}

func New(client Client, opts Options, conn *bus.Connection) *Handler {
	return &Handler{client: client, opts: opts, conn: conn}
}

func (h *Handler) State() State         { return h.state }
func (h *Handler) Handle() types.Handle { return h.handle }
func (h *Handler) Toggles() uint32      { return h.toggles }
func (h *Handler) Connected() bool      { return h.connected }
func (h *Handler) Options() Options     { return h.opts }

// HandleEvent dispatches one event. Events that are not BLE events are ignored.
func (h *Handler) HandleEvent(ev types.Event) {
	switch e := ev.(type) {
	case types.AdvertisementSeen:
		h.onAdvertisement(e)
	case types.Connected:
		h.onConnected(e)
	case types.ConnectFailed:
		h.connecting = false
		logx.Warn(comp, "connect failed", "addr", e.Addr, "err", e.Err)
	case types.Disconnected:
		h.onDisconnected(e)
	case types.ServiceDiscovered:
		logx.Info(comp, "service", "uuid", uint16(e.UUID), "start", uint16(e.Start), "end", uint16(e.End))
	case types.CharacteristicDiscovered:
		h.onCharacteristic(e)
	case types.DiscoveryTerminated:
		logx.Info(comp, "discovery terminated", "conn", uint16(e.Conn))
	case types.ReadComplete:
		h.onRead(e)
	case types.WriteComplete:
		h.onWrite(e)
	}
}

// Poll issues the first read once a target is captured and discovery has
// finished. Call it once per loop iteration.
func (h *Handler) Poll() {
	if h.state != PendingRead || h.client.DiscoveryActive() {
		return
	}
	h.setState(Toggling)
	if err := h.client.Read(h.handle); err != nil {
		logx.Warn(comp, "read failed", "handle", uint16(h.handle), "err", err)
	}
}

func (h *Handler) onAdvertisement(e types.AdvertisementSeen) {
	logx.Debug(comp, "adv", "addr", e.Addr, "rssi", e.RSSI, "name", e.LocalName, "scan_rsp", e.ScanResp)
	if h.opts.PeerName == "" || e.LocalName != h.opts.PeerName {
		return
	}
	if h.connected || h.connecting {
		return
	}
	h.connecting = true
	logx.Info(comp, "connecting", "addr", e.Addr)
	if err := h.client.Connect(e.Addr); err != nil {
		h.connecting = false
		logx.Warn(comp, "connect failed", "addr", e.Addr, "err", err)
	}
}

func (h *Handler) onConnected(e types.Connected) {
	h.connecting = false
	h.connected = true
	logx.Info(comp, "connected", "conn", uint16(e.Conn), "role", e.Role.String(), "addr", e.Addr)
	if e.Role != types.RoleCentral {
		return
	}
	h.setState(Discovering)
	if err := h.client.LaunchDiscovery(e.Conn, h.opts.RangeStart, h.opts.RangeEnd); err != nil {
		logx.Warn(comp, "discovery failed", "conn", uint16(e.Conn), "err", err)
	}
}

// onDisconnected only records link loss. The captured handle and state are
// kept; the cycle stops because no further completions arrive.
func (h *Handler) onDisconnected(e types.Disconnected) {
	h.connected = false
	h.connecting = false
	logx.Info(comp, "disconnected", "conn", uint16(e.Conn), "reason", e.Reason)
}

func (h *Handler) onCharacteristic(e types.CharacteristicDiscovered) {
	logx.Info(comp, "characteristic", "uuid", uint16(e.UUID), "handle", uint16(e.Handle))
	if e.UUID != h.opts.Target {
		return
	}
	h.handle = e.Handle
	h.setState(PendingRead)
}

func (h *Handler) onRead(e types.ReadComplete) {
	if h.handle == 0 || e.Handle != h.handle {
		return
	}
	if len(e.Data) == 0 {
		logx.Warn(comp, "empty read", "handle", uint16(e.Handle))
		return
	}
	v := e.Data[0] ^ 0x01
	logx.Debug(comp, "toggle", "handle", uint16(e.Handle), "from", e.Data[0], "to", v)
	h.toggles++
	if h.conn != nil {
		h.conn.Publish(h.conn.NewMessage(bus.T("event", "toggle"),
			types.ToggleEvent{Handle: e.Handle, From: e.Data[0], To: v}, false))
	}
	if err := h.client.Write(e.Handle, []byte{v}); err != nil {
		logx.Warn(comp, "write failed", "handle", uint16(e.Handle), "err", err)
	}
}

func (h *Handler) onWrite(e types.WriteComplete) {
	if h.handle == 0 || e.Handle != h.handle {
		return
	}
	if err := h.client.Read(e.Handle); err != nil {
		logx.Warn(comp, "read failed", "handle", uint16(e.Handle), "err", err)
	}
}

func (h *Handler) setState(s State) {
	if s == h.state {
		return
	}
	h.state = s
	logx.Debug(comp, "state", "to", s.String())
	if h.conn != nil {
		h.conn.Publish(h.conn.NewMessage(bus.T("state", comp),
			types.CentralState{State: s.String(), Handle: h.handle, TSms: timex.NowMs()}, true))
	}
}

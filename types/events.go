package types

// Event is any message posted to the firmware loop.
type Event any

// AdvertisementSeen is posted for every advertising report received while scanning.
type AdvertisementSeen struct {
	Addr      string
	RSSI      int16
	LocalName string
	ScanResp  bool
}

// Connected is posted when a link comes up.
type Connected struct {
	Conn ConnHandle
	Role Role
	Addr string
}

// ConnectFailed is posted when a requested connection could not be made.
type ConnectFailed struct {
	Addr string
	Err  error
}

// Disconnected is posted when a link goes down.
type Disconnected struct {
	Conn   ConnHandle
	Reason uint8
}

// ServiceDiscovered is posted for each service inside the discovery range.
type ServiceDiscovered struct {
	UUID  UUID16
	Start Handle
	End   Handle
}

// CharacteristicDiscovered is posted for each characteristic of a discovered service.
type CharacteristicDiscovered struct {
	UUID   UUID16
	Handle Handle
}

// DiscoveryTerminated is posted once discovery on a connection has finished.
type DiscoveryTerminated struct {
	Conn ConnHandle
}

// ReadComplete carries the value returned by a characteristic read.
type ReadComplete struct {
	Handle Handle
	Data   []byte
}

// WriteComplete acknowledges a characteristic write.
type WriteComplete struct {
	Handle Handle
}

// Tick is the periodic timer event.
type Tick struct {
	TSms int64
}

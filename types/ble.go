package types

// Handle is an opaque reference to a discovered characteristic value
// attribute. It is only meaningful while the connection that produced it
// is up. Zero means none.
type Handle uint16

// ConnHandle identifies one BLE connection.
type ConnHandle uint16

// UUID16 is a 16-bit attribute UUID.
type UUID16 uint16

// Role is the local role in a connection.
type Role uint8

const (
	RolePeripheral Role = iota
	RoleCentral
)

func (r Role) String() string {
	if r == RoleCentral {
		return "central"
	}
	return "peripheral"
}

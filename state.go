package wmbridge

import "fmt"

// ConnectionState is a client's position in its lifecycle.
//
//	Created -> Connecting -> Connected
//	Connecting -> Disconnected          (connect failed)
//	Connected  -> Disconnected          (explicit or involuntary)
//	any        -> Destroyed             (terminal)
type ConnectionState int32

const (
	StateCreated ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnected
	StateDestroyed
)

var stateNames = [...]string{
	StateCreated:      "created",
	StateConnecting:   "connecting",
	StateConnected:    "connected",
	StateDisconnected: "disconnected",
	StateDestroyed:    "destroyed",
}

// String returns the lower-case state name.
func (s ConnectionState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("ConnectionState(%d)", int32(s))
	}
	return stateNames[s]
}

package wmbridge

import "errors"

var (
	// ErrInit is returned when a client cannot be created: the session store
	// failed to open or no device identity could be resolved.
	ErrInit = errors.New("client initialization failed")

	// ErrConnect covers every connect and send failure. The underlying cause
	// is wrapped alongside it and recorded as the client's last error.
	ErrConnect = errors.New("connection error")

	// ErrNotConnected is wrapped with ErrConnect when sending while the
	// client is not connected.
	ErrNotConnected = errors.New("client not connected")

	// ErrDestroyed is returned by every operation on a destroyed client.
	ErrDestroyed = errors.New("client destroyed")
)

package interfaces

import (
	"context"
	"errors"
	"strings"

	"github.com/opd-ai/wmbridge/events"
)

// EventHandler receives protocol events. It is called from the protocol's
// own goroutines and must not block.
type EventHandler func(evt events.Event)

// ISession is the protocol capability the bridge drives. One ISession owns a
// device identity, its transport and its session store handle.
type ISession interface {
	// Connect opens the transport. Connecting an already connected session
	// succeeds without side effects.
	Connect() error

	// Disconnect closes the transport. It is safe to call repeatedly.
	Disconnect()

	// AddEventHandler registers handler for every protocol event.
	AddEventHandler(handler EventHandler)

	// PairingChannel returns a stream of pairing events for an unpaired
	// device. It must be called before Connect. The stream closes when
	// pairing ends or ctx is cancelled.
	PairingChannel(ctx context.Context) (<-chan events.Event, error)

	// SendMessage sends a text message to recipient.
	SendMessage(ctx context.Context, recipient, text string) error

	// IsPaired reports whether a linked device identity exists in the store.
	IsPaired() bool

	// Close releases the session store. The session is unusable afterwards.
	Close() error

	// IsSimulation returns true if this is a simulation implementation
	IsSimulation() bool
}

// SessionConfig holds configuration for session implementations
type SessionConfig struct {
	// StorageAddress is the session store path or connection string
	StorageAddress string

	// DeviceName is the display name announced when pairing
	DeviceName string

	// StoreDialect names the database/sql driver for the session store
	StoreDialect string

	// ForeignKeys enables referential-integrity constraints in the store
	ForeignKeys bool

	// UseSimulation determines whether to use simulation or the real protocol
	UseSimulation bool
}

var (
	// ErrMissingStorageAddress indicates the session store address is empty
	ErrMissingStorageAddress = errors.New("storage address is required")

	// ErrMissingStoreDialect indicates no store driver was configured
	ErrMissingStoreDialect = errors.New("store dialect is required")
)

// Validate checks the configuration for missing required fields.
func (c *SessionConfig) Validate() error {
	if strings.TrimSpace(c.StorageAddress) == "" {
		return ErrMissingStorageAddress
	}
	if !c.UseSimulation && c.StoreDialect == "" {
		return ErrMissingStoreDialect
	}
	return nil
}

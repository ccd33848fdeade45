package boundary

import (
	"context"
	"fmt"

	"github.com/opd-ai/wmbridge"
	"github.com/opd-ai/wmbridge/config"
	"github.com/opd-ai/wmbridge/events"
	"github.com/opd-ai/wmbridge/factory"
	"github.com/opd-ai/wmbridge/registry"
	"github.com/sirupsen/logrus"
)

// Bridge is the boundary's view of all live clients. Every exported method
// takes a handle, never a client, and reports failures as ErrorCode values.
type Bridge struct {
	clients  *registry.Registry[*wmbridge.Client]
	sessions wmbridge.SessionCreator
	config   *config.Config
	codec    events.Codec
}

// New creates a bridge whose sessions come from a factory configured by cfg.
// A nil cfg selects config.Default().
func New(cfg *config.Config) (*Bridge, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWithSessions(cfg, factory.NewSessionFactoryWithConfig(cfg.SessionTemplate()))
}

// NewWithSessions creates a bridge that opens sessions through sessions.
func NewWithSessions(cfg *config.Config, sessions wmbridge.SessionCreator) (*Bridge, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if sessions == nil {
		return nil, fmt.Errorf("session creator is required")
	}
	codec, err := events.CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":       "boundary.New",
		"backend":        cfg.Backend,
		"queue_capacity": cfg.QueueCapacity,
		"codec":          codec.Name(),
	}).Info("Bridge created")

	return &Bridge{
		clients:  registry.New[*wmbridge.Client](),
		sessions: sessions,
		config:   cfg,
		codec:    codec,
	}, nil
}

func (b *Bridge) clientOptions() *wmbridge.ClientOptions {
	return &wmbridge.ClientOptions{
		QueueCapacity: b.config.QueueCapacity,
		Codec:         b.codec,
		SendTimeout:   b.config.SendTimeout(),
	}
}

// Create opens a client for storageAddress and returns its handle, or
// registry.InvalidHandle when the session cannot be initialized.
func (b *Bridge) Create(storageAddress, deviceName string) registry.Handle {
	client, err := wmbridge.Create(context.Background(), b.sessions, storageAddress, deviceName, b.clientOptions())
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":        "Bridge.Create",
			"storage_address": storageAddress,
			"code":            ErrInit.String(),
			"error":           err.Error(),
		}).Error("Client initialization failed")
		return registry.InvalidHandle
	}

	h, err := b.clients.Allocate(client)
	if err != nil {
		client.Destroy()
		logrus.WithFields(logrus.Fields{
			"function": "Bridge.Create",
			"error":    err.Error(),
		}).Error("Client registration failed")
		return registry.InvalidHandle
	}

	logrus.WithFields(logrus.Fields{
		"function": "Bridge.Create",
		"handle":   uint64(h),
	}).Info("Client registered")
	return h
}

func (b *Bridge) lookup(function string, h registry.Handle) (*wmbridge.Client, bool) {
	client, ok := b.clients.Lookup(h)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": function,
			"handle":   uint64(h),
			"code":     ErrInvalidHandle.String(),
		}).Debug("Unknown handle")
	}
	return client, ok
}

// Connect connects the client behind h.
func (b *Bridge) Connect(h registry.Handle) ErrorCode {
	client, ok := b.lookup("Bridge.Connect", h)
	if !ok {
		return ErrInvalidHandle
	}
	return b.result("Bridge.Connect", h, client.Connect())
}

// Disconnect disconnects the client behind h.
func (b *Bridge) Disconnect(h registry.Handle) ErrorCode {
	client, ok := b.lookup("Bridge.Disconnect", h)
	if !ok {
		return ErrInvalidHandle
	}
	return b.result("Bridge.Disconnect", h, client.Disconnect())
}

// SendMessage sends text to recipient from the client behind h.
func (b *Bridge) SendMessage(h registry.Handle, recipient, text string) ErrorCode {
	client, ok := b.lookup("Bridge.SendMessage", h)
	if !ok {
		return ErrInvalidHandle
	}
	return b.result("Bridge.SendMessage", h, client.SendMessage(recipient, text))
}

func (b *Bridge) result(function string, h registry.Handle, err error) ErrorCode {
	code := CodeOf(err)
	if code != OK {
		logrus.WithFields(logrus.Fields{
			"function": function,
			"handle":   uint64(h),
			"code":     code.String(),
			"error":    err.Error(),
		}).Debug("Returning error code")
	}
	return code
}

// Destroy removes h from the registry, then tears the client down outside
// the registry lock. Calls arriving after removal see ErrInvalidHandle.
func (b *Bridge) Destroy(h registry.Handle) {
	client, ok := b.clients.Release(h)
	if !ok {
		return
	}
	client.Destroy()

	logrus.WithFields(logrus.Fields{
		"function": "Bridge.Destroy",
		"handle":   uint64(h),
	}).Info("Client destroyed")
}

// PollEvent copies the next event for h into buf. It returns the number of
// bytes written, 0 when the queue is empty, or a negative ErrorCode. buf is
// untouched unless the whole event is written.
func (b *Bridge) PollEvent(h registry.Handle, buf []byte) int {
	client, ok := b.lookup("Bridge.PollEvent", h)
	if !ok {
		return int(ErrInvalidHandle)
	}

	n, err := client.PollEvent(buf)
	if err != nil {
		code := CodeOf(err)
		logrus.WithFields(logrus.Fields{
			"function": "Bridge.PollEvent",
			"handle":   uint64(h),
			"capacity": len(buf),
			"size":     n,
			"code":     code.String(),
		}).Debug("Poll failed")
		return int(code)
	}
	return n
}

// LastError writes the client's last error into buf as a NUL-terminated
// string, truncated to len(buf)-1 bytes. It returns the number of message
// bytes written, or 0 when there is no error, the handle is unknown or buf
// is empty.
func (b *Bridge) LastError(h registry.Handle, buf []byte) int {
	client, ok := b.lookup("Bridge.LastError", h)
	if !ok || len(buf) == 0 {
		return 0
	}

	msg := client.LastError()
	if msg == "" {
		return 0
	}
	n := copy(buf[:len(buf)-1], msg)
	buf[n] = 0
	return n
}

// State returns the client's ConnectionState as an integer, or
// ErrInvalidHandle.
func (b *Bridge) State(h registry.Handle) int {
	client, ok := b.lookup("Bridge.State", h)
	if !ok {
		return int(ErrInvalidHandle)
	}
	return int(client.State())
}

// NextEventSize returns the size of the next queued event, 0 when the queue
// is empty, or ErrInvalidHandle.
func (b *Bridge) NextEventSize(h registry.Handle) int {
	client, ok := b.lookup("Bridge.NextEventSize", h)
	if !ok {
		return int(ErrInvalidHandle)
	}
	size, _ := client.NextEventSize()
	return size
}

// PendingEvents returns the number of queued events for h, or
// ErrInvalidHandle.
func (b *Bridge) PendingEvents(h registry.Handle) int {
	client, ok := b.lookup("Bridge.PendingEvents", h)
	if !ok {
		return int(ErrInvalidHandle)
	}
	return client.PendingEvents()
}

// Client returns the client behind h for in-process callers.
func (b *Bridge) Client(h registry.Handle) (*wmbridge.Client, bool) {
	return b.clients.Lookup(h)
}

// Count returns the number of live clients.
func (b *Bridge) Count() int {
	return b.clients.Len()
}

// Handles returns the live handles in ascending order.
func (b *Bridge) Handles() []registry.Handle {
	return b.clients.Handles()
}

// Close destroys every live client. Create fails on a closed bridge.
func (b *Bridge) Close() {
	clients := b.clients.Close()
	for _, c := range clients {
		c.Destroy()
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Bridge.Close",
		"destroyed": len(clients),
	}).Info("Bridge closed")
}

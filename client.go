package wmbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/wmbridge/events"
	"github.com/opd-ai/wmbridge/interfaces"
	"github.com/opd-ai/wmbridge/limits"
	"github.com/opd-ai/wmbridge/queue"
	"github.com/sirupsen/logrus"
)

// DefaultSendTimeout bounds a single SendMessage call.
const DefaultSendTimeout = 30 * time.Second

// SessionCreator opens protocol sessions. factory.SessionFactory satisfies it.
type SessionCreator interface {
	CreateSession(ctx context.Context, storageAddress, deviceName string) (interfaces.ISession, error)
}

// ClientOptions contains per-client settings.
type ClientOptions struct {
	QueueCapacity int
	Codec         events.Codec
	SendTimeout   time.Duration
	TimeProvider  events.TimeProvider
}

// NewClientOptions returns the default client options.
func NewClientOptions() *ClientOptions {
	return &ClientOptions{
		QueueCapacity: limits.DefaultQueueCapacity,
		Codec:         events.JSONCodec{},
		SendTimeout:   DefaultSendTimeout,
	}
}

// Client owns one protocol session, one bounded event queue, one cancellation
// scope and the last recorded error.
type Client struct {
	session   interfaces.ISession
	queue     *queue.Queue
	marshaler *events.Marshaler
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// lifecycleMu serializes Connect, Disconnect and Destroy.
	lifecycleMu sync.Mutex

	mu        sync.RWMutex
	state     ConnectionState
	lastError string
	pairing   bool

	destroyOnce sync.Once
}

// Create opens a session through sessions and wraps it in a Client in state
// Created. Any failure is reported as ErrInit.
func Create(ctx context.Context, sessions SessionCreator, storageAddress, deviceName string, opts *ClientOptions) (*Client, error) {
	logrus.WithFields(logrus.Fields{
		"function":        "Create",
		"storage_address": storageAddress,
		"device_name":     deviceName,
	}).Info("Creating client")

	session, err := sessions.CreateSession(ctx, storageAddress, deviceName)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":        "Create",
			"storage_address": storageAddress,
			"error":           err.Error(),
		}).Error("Failed to open session")
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	return NewClient(session, opts), nil
}

// NewClient wraps an open session. The client registers its event handler on
// the session immediately; opts may be nil for defaults.
func NewClient(session interfaces.ISession, opts *ClientOptions) *Client {
	if opts == nil {
		opts = NewClientOptions()
	}
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}

	marshaler := events.NewMarshaler(opts.Codec)
	if opts.TimeProvider != nil {
		marshaler.SetTimeProvider(opts.TimeProvider)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		session:   session,
		queue:     queue.New(opts.QueueCapacity),
		marshaler: marshaler,
		timeout:   timeout,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateCreated,
	}
	session.AddEventHandler(c.handleEvent)

	logrus.WithFields(logrus.Fields{
		"function":       "NewClient",
		"queue_capacity": c.queue.Cap(),
		"codec":          marshaler.Codec().Name(),
		"simulation":     session.IsSimulation(),
	}).Debug("Client created")

	return c
}

// Connect opens the transport. An unpaired session also gets a pairing
// forwarder that feeds pairing events into the queue until pairing ends or
// the client is destroyed. Connecting while Connected re-issues the
// underlying connect without restarting pairing.
func (c *Client) Connect() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.State() == StateDestroyed {
		return ErrDestroyed
	}

	wasConnected := c.State() == StateConnected
	if !wasConnected {
		c.setState(StateConnecting)
	}

	if !wasConnected && !c.session.IsPaired() && !c.isPairing() {
		if err := c.startPairing(); err != nil {
			return c.connectFailed(err)
		}
	}

	if err := c.session.Connect(); err != nil {
		return c.connectFailed(err)
	}

	c.setState(StateConnected)
	logrus.WithFields(logrus.Fields{
		"function": "Client.Connect",
		"paired":   c.session.IsPaired(),
	}).Info("Client connected")
	return nil
}

func (c *Client) connectFailed(err error) error {
	c.recordError(err)
	c.setState(StateDisconnected)

	logrus.WithFields(logrus.Fields{
		"function": "Client.Connect",
		"error":    err.Error(),
	}).Warn("Client connect failed")

	return fmt.Errorf("%w: %w", ErrConnect, err)
}

// startPairing opens the session's pairing stream and forwards it into the
// queue on a goroutine scoped to the client's context.
func (c *Client) startPairing() error {
	stream, err := c.session.PairingChannel(c.ctx)
	if err != nil {
		return fmt.Errorf("opening pairing stream: %w", err)
	}

	c.mu.Lock()
	c.pairing = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.forwardPairing(stream)
	return nil
}

func (c *Client) forwardPairing(stream <-chan events.Event) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		c.pairing = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case evt, ok := <-stream:
			if !ok {
				logrus.WithFields(logrus.Fields{
					"function": "forwardPairing",
				}).Debug("Pairing stream ended")
				return
			}
			c.deliver(evt)
		}
	}
}

func (c *Client) isPairing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pairing
}

// Disconnect closes the transport and moves the client to Disconnected. It
// is idempotent and does nothing on a destroyed client.
func (c *Client) Disconnect() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.State() == StateDestroyed {
		return ErrDestroyed
	}

	c.session.Disconnect()
	c.setState(StateDisconnected)

	logrus.WithFields(logrus.Fields{
		"function": "Client.Disconnect",
	}).Info("Client disconnected")
	return nil
}

// SendMessage sends text to recipient. Every failure, including sending
// while not connected, wraps ErrConnect and is recorded as the last error.
func (c *Client) SendMessage(recipient, text string) error {
	switch c.State() {
	case StateDestroyed:
		return ErrDestroyed
	case StateConnected:
	default:
		return c.sendFailed(recipient, ErrNotConnected)
	}

	if err := limits.ValidateRecipient(recipient); err != nil {
		return c.sendFailed(recipient, err)
	}
	if err := limits.ValidateText(text); err != nil {
		return c.sendFailed(recipient, err)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	if err := c.session.SendMessage(ctx, recipient, text); err != nil {
		return c.sendFailed(recipient, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Client.SendMessage",
		"recipient": recipient,
		"length":    len(text),
	}).Debug("Message sent")
	return nil
}

func (c *Client) sendFailed(recipient string, err error) error {
	c.recordError(err)

	logrus.WithFields(logrus.Fields{
		"function":  "Client.SendMessage",
		"recipient": recipient,
		"error":     err.Error(),
	}).Warn("Send failed")

	return fmt.Errorf("%w: %w", ErrConnect, err)
}

// Destroy cancels background producers, disconnects, closes the session
// store and waits for the pairing forwarder to exit. Only the first call has
// any effect.
func (c *Client) Destroy() {
	c.destroyOnce.Do(func() {
		c.lifecycleMu.Lock()
		defer c.lifecycleMu.Unlock()

		c.setState(StateDestroyed)
		c.cancel()
		c.session.Disconnect()
		if err := c.session.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Client.Destroy",
				"error":    err.Error(),
			}).Warn("Closing session failed")
		}
		c.wg.Wait()

		stats := c.queue.Stats()
		logrus.WithFields(logrus.Fields{
			"function":  "Client.Destroy",
			"pending":   c.queue.Len(),
			"enqueued":  stats.Enqueued,
			"dropped":   stats.Dropped,
			"delivered": stats.Polled,
		}).Info("Client destroyed")
	})
}

// PollEvent copies the oldest queued event into buf and returns its length.
// It returns 0 and a nil error when nothing is queued. When the event does
// not fit, buf is untouched, the event stays queued and the error wraps
// queue.ErrTooLarge.
func (c *Client) PollEvent(buf []byte) (int, error) {
	if c.State() == StateDestroyed {
		return 0, ErrDestroyed
	}

	entry, size, err := c.queue.PollFit(len(buf))
	switch {
	case errors.Is(err, queue.ErrEmpty):
		return 0, nil
	case err != nil:
		return size, err
	}
	return copy(buf, entry), nil
}

// NextEventSize reports the serialized size of the oldest queued event.
func (c *Client) NextEventSize() (int, bool) {
	return c.queue.PeekSize()
}

// PendingEvents returns the number of queued events.
func (c *Client) PendingEvents() int {
	return c.queue.Len()
}

// QueueStats returns the client's queue counters.
func (c *Client) QueueStats() queue.Stats {
	return c.queue.Stats()
}

// LastError returns the most recently recorded error message, or "".
func (c *Client) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Session returns the underlying protocol session.
func (c *Client) Session() interfaces.ISession {
	return c.session
}

func (c *Client) setState(s ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDestroyed {
		return
	}
	c.state = s
}

func (c *Client) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = err.Error()
}

// handleEvent is the session callback. It runs on protocol goroutines.
func (c *Client) handleEvent(evt events.Event) {
	if c.ctx.Err() != nil {
		return
	}
	c.observe(evt)
	c.deliver(evt)
}

// observe applies involuntary state transitions reported by the protocol.
func (c *Client) observe(evt events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	switch evt.Kind() {
	case events.KindConnected:
		if c.state == StateConnecting || c.state == StateDisconnected {
			c.state = StateConnected
		}
	case events.KindDisconnected, events.KindLoggedOut:
		if c.state == StateConnected {
			c.state = StateDisconnected
		}
	}

	if prev != c.state {
		logrus.WithFields(logrus.Fields{
			"function": "Client.observe",
			"event":    evt.Kind().Tag(),
			"from":     prev.String(),
			"to":       c.state.String(),
		}).Info("Connection state changed by protocol")
	}
}

// deliver marshals evt and enqueues it. Marshal failures and panics drop the
// event without affecting the producer.
func (c *Client) deliver(evt events.Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Client.deliver",
				"panic":    fmt.Sprint(r),
			}).Error("Recovered panic while delivering event")
		}
	}()

	if c.ctx.Err() != nil {
		return
	}

	data, err := c.marshaler.Marshal(evt)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Client.deliver",
			"event":    evt.Kind().Tag(),
			"error":    err.Error(),
		}).Warn("Dropping event that failed to marshal")
		return
	}

	if c.queue.Enqueue(data) {
		logrus.WithFields(logrus.Fields{
			"function": "Client.deliver",
			"event":    evt.Kind().Tag(),
			"capacity": c.queue.Cap(),
		}).Debug("Queue full, evicted oldest event")
	}
}

package real

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver for the session store
	"github.com/opd-ai/wmbridge/events"
	"github.com/opd-ai/wmbridge/interfaces"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waEvents "go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

// ErrSessionClosed is returned for any operation after Close.
var ErrSessionClosed = errors.New("session closed")

// deviceNameMu guards whatsmeow's process-wide device properties.
var deviceNameMu sync.Mutex

// Session implements interfaces.ISession on top of whatsmeow with a
// database/sql backed session store.
type Session struct {
	config    *interfaces.SessionConfig
	container *sqlstore.Container
	client    *whatsmeow.Client

	// pairing is set while a pairing channel forwards QR items; raw QR
	// events are suppressed then so codes are not delivered twice.
	pairing atomic.Bool

	mu     sync.Mutex
	closed bool
}

var _ interfaces.ISession = (*Session)(nil)

// NewSession opens the session store, resolves or creates the device
// identity and constructs the whatsmeow client.
func NewSession(ctx context.Context, config *interfaces.SessionConfig) (*Session, error) {
	if config == nil {
		return nil, errors.New("session config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":        "NewSession",
		"storage_address": config.StorageAddress,
		"device_name":     config.DeviceName,
		"dialect":         config.StoreDialect,
	}).Info("Opening whatsmeow session")

	if err := ensureParentDir(config.StorageAddress); err != nil {
		return nil, err
	}

	address := ConnectionString(config.StorageAddress, config.ForeignKeys)
	container, err := sqlstore.New(ctx, config.StoreDialect, address, NewLogger("Database"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	if config.DeviceName != "" {
		setDeviceName(config.DeviceName)
	}

	client := whatsmeow.NewClient(device, NewLogger("Client"))

	logrus.WithFields(logrus.Fields{
		"function": "NewSession",
		"paired":   device.ID != nil,
	}).Info("whatsmeow session ready")

	return &Session{
		config:    config,
		container: container,
		client:    client,
	}, nil
}

// setDeviceName sets the name shown in the phone's linked devices list.
// whatsmeow keeps it process-wide; it is read when pairing.
func setDeviceName(name string) {
	deviceNameMu.Lock()
	defer deviceNameMu.Unlock()
	store.DeviceProps.Os = proto.String(name)
}

// Connect implements ISession.Connect
func (s *Session) Connect() error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if s.client.IsConnected() {
		return nil
	}
	return s.client.Connect()
}

// Disconnect implements ISession.Disconnect
func (s *Session) Disconnect() {
	s.client.Disconnect()
}

// AddEventHandler implements ISession.AddEventHandler
func (s *Session) AddEventHandler(handler interfaces.EventHandler) {
	s.client.AddEventHandler(func(evt any) {
		if _, isQR := evt.(*waEvents.QR); isQR && s.pairing.Load() {
			return
		}
		handler(convertEvent(evt))
	})
}

// PairingChannel implements ISession.PairingChannel. QR channel items are
// converted and handed off through a bounded channel until the QR stream
// ends or ctx is cancelled.
func (s *Session) PairingChannel(ctx context.Context) (<-chan events.Event, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	qr, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening pairing channel: %w", err)
	}

	out := make(chan events.Event, 1)
	s.pairing.Store(true)
	go func() {
		defer close(out)
		defer s.pairing.Store(false)
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-qr:
				if !ok {
					return
				}
				select {
				case out <- convertPairingItem(item):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// SendMessage implements ISession.SendMessage
func (s *Session) SendMessage(ctx context.Context, recipient, text string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}

	jid, err := parseRecipient(recipient)
	if err != nil {
		return err
	}

	resp, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("sending to %s: %w", jid, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Session.SendMessage",
		"recipient":  jid.String(),
		"message_id": resp.ID,
	}).Debug("Message sent")
	return nil
}

// parseRecipient accepts a full JID or a bare phone number.
func parseRecipient(recipient string) (types.JID, error) {
	if !strings.ContainsRune(recipient, '@') {
		recipient = recipient + "@" + types.DefaultUserServer
	}
	jid, err := types.ParseJID(recipient)
	if err != nil {
		return types.JID{}, fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}
	return jid, nil
}

// IsPaired implements ISession.IsPaired
func (s *Session) IsPaired() bool {
	return s.client.Store.ID != nil
}

// Close implements ISession.Close
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.closed = true
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":        "Session.Close",
		"storage_address": s.config.StorageAddress,
	}).Info("Closing whatsmeow session store")

	return s.container.Close()
}

// IsSimulation implements ISession.IsSimulation
func (s *Session) IsSimulation() bool {
	return false
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opd-ai/wmbridge/events"
	"github.com/opd-ai/wmbridge/interfaces"
	"github.com/sirupsen/logrus"
)

// PairingCodeTimeout is the lifetime advertised for simulated pairing codes.
const PairingCodeTimeout = 60 * time.Second

var (
	// ErrSessionClosed is returned for any operation after Close.
	ErrSessionClosed = errors.New("simulated session closed")

	// ErrNotConnected is returned by SendMessage while disconnected.
	ErrNotConnected = errors.New("simulated session not connected")

	// ErrAlreadyPaired is returned by PairingChannel when an identity exists.
	ErrAlreadyPaired = errors.New("simulated session already paired")

	// ErrAlreadyConnected is returned by PairingChannel after Connect.
	ErrAlreadyConnected = errors.New("simulated session already connected")
)

// SentMessage records one SendMessage call for test verification
type SentMessage struct {
	ID        string
	Recipient string
	Text      string
	Timestamp time.Time
}

// SessionStats holds typed counters about the simulation
type SessionStats struct {
	ConnectCalls    int
	DisconnectCalls int
	SentMessages    int
	Handlers        int
	PairingStreams  int
	Connected       bool
	Paired          bool
	Closed          bool
}

// SimulatedSession implements interfaces.ISession in memory for testing
type SimulatedSession struct {
	config *interfaces.SessionConfig

	mu              sync.RWMutex
	handlers        []interfaces.EventHandler
	connected       bool
	paired          bool
	closed          bool
	connectErr      error
	sendErr         error
	sent            []SentMessage
	connectCalls    int
	disconnectCalls int
	pairingStreams  int
	pairingDone     chan struct{}
}

// NewSimulatedSession creates a new unpaired simulation for testing
func NewSimulatedSession(config *interfaces.SessionConfig) *SimulatedSession {
	if config == nil {
		config = &interfaces.SessionConfig{StorageAddress: ":memory:", UseSimulation: true}
	}

	logrus.Warn("SIMULATION SESSION - NOT A REAL CONNECTION")
	logrus.WithFields(logrus.Fields{
		"function":        "NewSimulatedSession",
		"storage_address": config.StorageAddress,
		"device_name":     config.DeviceName,
	}).Info("Creating simulated session for testing")

	return &SimulatedSession{
		config: config,
		sent:   make([]SentMessage, 0),
	}
}

// Connect implements ISession.Connect with simulation
func (s *SimulatedSession) Connect() error {
	s.mu.Lock()
	s.connectCalls++
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err := s.connectErr; err != nil {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function": "SimulatedSession.Connect",
			"error":    err.Error(),
		}).Warn("Simulated connect failure")
		return err
	}
	wasConnected := s.connected
	s.connected = true
	paired := s.paired
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":      "SimulatedSession.Connect",
		"was_connected": wasConnected,
		"paired":        paired,
	}).Debug("Simulated connect")

	if paired && !wasConnected {
		s.Emit(&events.Connected{})
	}
	return nil
}

// Disconnect implements ISession.Disconnect with simulation
func (s *SimulatedSession) Disconnect() {
	s.mu.Lock()
	s.disconnectCalls++
	s.connected = false
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SimulatedSession.Disconnect",
	}).Debug("Simulated disconnect")
}

// AddEventHandler implements ISession.AddEventHandler
func (s *SimulatedSession) AddEventHandler(handler interfaces.EventHandler) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// PairingChannel implements ISession.PairingChannel. The stream emits one
// pairing code immediately, then a "success" item when SimulatePairing is
// called. It closes on success or when ctx is cancelled.
func (s *SimulatedSession) PairingChannel(ctx context.Context) (<-chan events.Event, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	case s.paired:
		s.mu.Unlock()
		return nil, ErrAlreadyPaired
	case s.connected:
		s.mu.Unlock()
		return nil, ErrAlreadyConnected
	}
	s.pairingStreams++
	done := make(chan struct{})
	s.pairingDone = done
	s.mu.Unlock()

	ch := make(chan events.Event, 4)
	ch <- &events.PairingCode{
		Codes:     []string{"2@" + uuid.NewString()},
		Event:     "code",
		TimeoutMs: PairingCodeTimeout.Milliseconds(),
	}

	go func() {
		defer close(ch)
		select {
		case <-ctx.Done():
		case <-done:
			select {
			case ch <- &events.PairingCode{Codes: []string{}, Event: "success"}:
			case <-ctx.Done():
			}
		}
	}()

	logrus.WithFields(logrus.Fields{
		"function": "SimulatedSession.PairingChannel",
		"streams":  s.pairingStreams,
	}).Debug("Simulated pairing stream opened")

	return ch, nil
}

// SendMessage implements ISession.SendMessage with simulation
func (s *SimulatedSession) SendMessage(ctx context.Context, recipient, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return ErrSessionClosed
	case !s.connected:
		return ErrNotConnected
	case s.sendErr != nil:
		return s.sendErr
	}

	msg := SentMessage{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Text:      text,
		Timestamp: time.Now(),
	}
	s.sent = append(s.sent, msg)

	logrus.WithFields(logrus.Fields{
		"function":   "SimulatedSession.SendMessage",
		"recipient":  recipient,
		"text_len":   len(text),
		"message_id": msg.ID,
	}).Debug("Simulated message sent")

	return nil
}

// IsPaired implements ISession.IsPaired
func (s *SimulatedSession) IsPaired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paired
}

// Close implements ISession.Close
func (s *SimulatedSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.connected = false
	return nil
}

// IsSimulation implements ISession.IsSimulation
func (s *SimulatedSession) IsSimulation() bool {
	return true
}

// Emit delivers evt to every registered handler, as the protocol would.
func (s *SimulatedSession) Emit(evt events.Event) {
	s.mu.RLock()
	handlers := make([]interfaces.EventHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}

// SimulatePairing completes device linking: the pairing stream reports
// success and PairSuccess plus Connected are emitted to handlers.
func (s *SimulatedSession) SimulatePairing(id string) {
	s.mu.Lock()
	s.paired = true
	s.connected = true
	done := s.pairingDone
	s.pairingDone = nil
	s.mu.Unlock()

	if done != nil {
		close(done)
	}

	s.Emit(&events.PairSuccess{ID: id, Platform: "simulation"})
	s.Emit(&events.Connected{})
}

// SetPaired marks the simulated store as already holding an identity.
func (s *SimulatedSession) SetPaired(paired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paired = paired
}

// SimulateDisconnect drops the transport involuntarily and emits Disconnected.
func (s *SimulatedSession) SimulateDisconnect() {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()

	s.Emit(&events.Disconnected{})
}

// FailConnect makes subsequent Connect calls return err; nil clears it.
func (s *SimulatedSession) FailConnect(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectErr = err
}

// FailSends makes subsequent SendMessage calls return err; nil clears it.
func (s *SimulatedSession) FailSends(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

// IsConnected reports the simulated transport state.
func (s *SimulatedSession) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// GetSentMessages returns the send log for test verification
func (s *SimulatedSession) GetSentMessages() []SentMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to prevent external modifications
	sent := make([]SentMessage, len(s.sent))
	copy(sent, s.sent)
	return sent
}

// GetTypedStats returns typed statistics about the simulation
func (s *SimulatedSession) GetTypedStats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionStats{
		ConnectCalls:    s.connectCalls,
		DisconnectCalls: s.disconnectCalls,
		SentMessages:    len(s.sent),
		Handlers:        len(s.handlers),
		PairingStreams:  s.pairingStreams,
		Connected:       s.connected,
		Paired:          s.paired,
		Closed:          s.closed,
	}
}

// String implements fmt.Stringer for log output.
func (s *SimulatedSession) String() string {
	stats := s.GetTypedStats()
	return fmt.Sprintf("SimulatedSession{store=%s connected=%t paired=%t}", s.config.StorageAddress, stats.Connected, stats.Paired)
}

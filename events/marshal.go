package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/wmbridge/limits"
)

// ErrNoPayload is returned by Envelope.Payload for a kind that requires data
// but arrived with a null payload.
var ErrNoPayload = errors.New("envelope has no payload")

// TimeProvider abstracts the clock used to stamp envelopes.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the standard library clock.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Marshaler turns events into envelopes.
type Marshaler struct {
	codec Codec
	clock TimeProvider
}

// NewMarshaler creates a marshaler for codec. A nil codec selects JSONCodec.
func NewMarshaler(codec Codec) *Marshaler {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Marshaler{codec: codec, clock: DefaultTimeProvider{}}
}

// SetTimeProvider replaces the envelope clock.
func (m *Marshaler) SetTimeProvider(tp TimeProvider) {
	if tp == nil {
		tp = DefaultTimeProvider{}
	}
	m.clock = tp
}

// Codec returns the codec in use.
func (m *Marshaler) Codec() Codec {
	return m.codec
}

// Marshal encodes evt as {type, timestamp, data}. The result never exceeds
// limits.MaxEventSize; an error means the event must be dropped.
func (m *Marshaler) Marshal(evt Event) ([]byte, error) {
	if evt == nil {
		return nil, errors.New("nil event")
	}

	var b payloadBuilder
	evt.Accept(&b)

	data, err := m.codec.Encode(wireEnvelope{
		Type:      evt.Kind().Tag(),
		Timestamp: m.clock.Now().UnixMilli(),
		Data:      b.payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", evt.Kind(), err)
	}
	if err := limits.ValidateEvent(data); err != nil {
		return nil, fmt.Errorf("%s event: %w", evt.Kind(), err)
	}
	return data, nil
}

// payloadBuilder selects the data object for each kind.
type payloadBuilder struct {
	payload any
}

var _ Visitor = (*payloadBuilder)(nil)

func (b *payloadBuilder) VisitPairingCode(e *PairingCode) {
	if e.Codes == nil {
		cp := *e
		cp.Codes = []string{}
		b.payload = &cp
		return
	}
	b.payload = e
}

func (b *payloadBuilder) VisitPairSuccess(e *PairSuccess)   { b.payload = e }
func (b *payloadBuilder) VisitConnected(*Connected)         { b.payload = nil }
func (b *payloadBuilder) VisitDisconnected(*Disconnected)   { b.payload = nil }
func (b *payloadBuilder) VisitLoggedOut(e *LoggedOut)       { b.payload = e }
func (b *payloadBuilder) VisitMessage(e *Message)           { b.payload = e }
func (b *payloadBuilder) VisitPresence(e *Presence)         { b.payload = e }
func (b *payloadBuilder) VisitHistorySync(e *HistorySync)   { b.payload = e }
func (b *payloadBuilder) VisitChatPresence(e *ChatPresence) { b.payload = e }
func (b *payloadBuilder) VisitUnknown(e *Unknown)           { b.payload = e }

func (b *payloadBuilder) VisitReceipt(e *Receipt) {
	if e.MessageIDs == nil {
		cp := *e
		cp.MessageIDs = []string{}
		b.payload = &cp
		return
	}
	b.payload = e
}

func (b *payloadBuilder) VisitPushNameSetting(e *PushNameSetting)           { b.payload = e }
func (b *payloadBuilder) VisitOfflineSyncPreview(e *OfflineSyncPreview)     { b.payload = e }
func (b *payloadBuilder) VisitOfflineSyncCompleted(e *OfflineSyncCompleted) { b.payload = e }

// Envelope is a decoded {type, timestamp, data} record. Data holds the raw
// payload in the codec's encoding and is nil for a null payload.
type Envelope struct {
	Type      string
	Timestamp int64
	Data      []byte

	codec Codec
}

// Decode parses a JSON envelope.
func Decode(data []byte) (Envelope, error) {
	return JSONCodec{}.Decode(data)
}

// Kind returns the envelope's kind; unrecognized tags map to KindUnknown.
func (e Envelope) Kind() Kind {
	k, _ := ParseKind(e.Type)
	return k
}

// Payload decodes Data into the typed event for the envelope's tag.
func (e Envelope) Payload() (Event, error) {
	k, ok := ParseKind(e.Type)
	if !ok {
		return nil, fmt.Errorf("unrecognized event tag %q", e.Type)
	}

	evt := newEvent(k)
	if e.Data == nil {
		switch k {
		case KindConnected, KindDisconnected:
			return evt, nil
		default:
			return nil, fmt.Errorf("%s: %w", e.Type, ErrNoPayload)
		}
	}

	codec := e.codec
	if codec == nil {
		codec = JSONCodec{}
	}
	if err := codec.Unmarshal(e.Data, evt); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return evt, nil
}

// eventFactories builds a zero event for each kind, indexed by Kind.
var eventFactories = [...]func() Event{
	KindPairingCode:          func() Event { return &PairingCode{} },
	KindPairSuccess:          func() Event { return &PairSuccess{} },
	KindConnected:            func() Event { return &Connected{} },
	KindDisconnected:         func() Event { return &Disconnected{} },
	KindLoggedOut:            func() Event { return &LoggedOut{} },
	KindMessage:              func() Event { return &Message{} },
	KindReceipt:              func() Event { return &Receipt{} },
	KindPresence:             func() Event { return &Presence{} },
	KindHistorySync:          func() Event { return &HistorySync{} },
	KindPushNameSetting:      func() Event { return &PushNameSetting{} },
	KindChatPresence:         func() Event { return &ChatPresence{} },
	KindOfflineSyncPreview:   func() Event { return &OfflineSyncPreview{} },
	KindOfflineSyncCompleted: func() Event { return &OfflineSyncCompleted{} },
	KindUnknown:              func() Event { return &Unknown{} },
}

var _ = [1]struct{}{}[len(eventFactories)-int(kindCount)]

func newEvent(k Kind) Event {
	return eventFactories[k]()
}

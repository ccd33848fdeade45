package events

import (
	"reflect"
	"strings"
)

// Event is one protocol event in the closed variant set. Each concrete type
// carries exactly the documented wire fields for its kind.
type Event interface {
	Kind() Kind
	Accept(v Visitor)
}

// Visitor has one method per kind. Anything that must treat every kind,
// such as the payload builder, implements it, so adding a kind without
// handling it fails to compile.
type Visitor interface {
	VisitPairingCode(*PairingCode)
	VisitPairSuccess(*PairSuccess)
	VisitConnected(*Connected)
	VisitDisconnected(*Disconnected)
	VisitLoggedOut(*LoggedOut)
	VisitMessage(*Message)
	VisitReceipt(*Receipt)
	VisitPresence(*Presence)
	VisitHistorySync(*HistorySync)
	VisitPushNameSetting(*PushNameSetting)
	VisitChatPresence(*ChatPresence)
	VisitOfflineSyncPreview(*OfflineSyncPreview)
	VisitOfflineSyncCompleted(*OfflineSyncCompleted)
	VisitUnknown(*Unknown)
}

// PairingCode is emitted while linking a new device. Codes holds the
// candidate QR payloads; Event names the pairing step ("code", "success",
// "timeout", "error", ...).
type PairingCode struct {
	Codes     []string `json:"codes"`
	Event     string   `json:"event"`
	TimeoutMs int64    `json:"timeout_ms"`
	Error     string   `json:"error,omitempty"`
}

// PairSuccess is emitted once a device has been linked.
type PairSuccess struct {
	ID           string `json:"id"`
	BusinessName string `json:"business_name"`
	Platform     string `json:"platform"`
}

// Connected is emitted when the session is up and authenticated.
type Connected struct{}

// Disconnected is emitted when the transport drops.
type Disconnected struct{}

// LoggedOut is emitted when the linked device was removed.
type LoggedOut struct {
	OnConnect bool `json:"on_connect"`
	Reason    int  `json:"reason"`
}

// Message is an incoming chat message.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Chat      string `json:"chat"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	IsGroup   bool   `json:"is_group"`
	PushName  string `json:"push_name"`
}

// SenderName returns the push name, or the user part of the sender
// identifier when no push name is known.
func (m *Message) SenderName() string {
	if m.PushName != "" {
		return m.PushName
	}
	user, _, _ := strings.Cut(m.From, "@")
	return user
}

// Receipt is a delivery or read receipt for one or more messages.
type Receipt struct {
	MessageIDs []string `json:"message_ids"`
	Chat       string   `json:"chat"`
	Sender     string   `json:"sender"`
	Type       string   `json:"type"`
	Timestamp  int64    `json:"timestamp"`
}

// Presence is a contact's online/offline update.
type Presence struct {
	From        string `json:"from"`
	Unavailable bool   `json:"unavailable"`
	LastSeen    int64  `json:"last_seen"`
}

// Online reports whether the contact is available.
func (p *Presence) Online() bool {
	return !p.Unavailable
}

// HistorySync reports history synchronization progress.
type HistorySync struct {
	Progress int `json:"progress"`
}

// PushNameSetting reports a change of the account's own display name.
type PushNameSetting struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// ChatPresence is a typing/recording indicator in a chat.
type ChatPresence struct {
	Chat   string `json:"chat"`
	Sender string `json:"sender"`
	State  string `json:"state"`
	Media  string `json:"media"`
}

// OfflineSyncPreview summarizes what will be replayed after reconnecting.
type OfflineSyncPreview struct {
	Total          int `json:"total"`
	AppDataChanges int `json:"app_data_changes"`
	Messages       int `json:"messages"`
	Notifications  int `json:"notifications"`
	Receipts       int `json:"receipts"`
}

// OfflineSyncCompleted is emitted when the offline replay is done.
type OfflineSyncCompleted struct {
	Count int `json:"count"`
}

// Unknown carries a protocol event outside the closed set. Name is the
// source type name and Raw the full source structure.
type Unknown struct {
	Name string `json:"name"`
	Raw  any    `json:"raw"`
}

// NewUnknown wraps raw, naming it after its dynamic type.
func NewUnknown(raw any) *Unknown {
	name := "nil"
	if t := reflect.TypeOf(raw); t != nil {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		name = t.Name()
		if name == "" {
			name = t.String()
		}
	}
	return &Unknown{Name: name, Raw: raw}
}

func (*PairingCode) Kind() Kind          { return KindPairingCode }
func (*PairSuccess) Kind() Kind          { return KindPairSuccess }
func (*Connected) Kind() Kind            { return KindConnected }
func (*Disconnected) Kind() Kind         { return KindDisconnected }
func (*LoggedOut) Kind() Kind            { return KindLoggedOut }
func (*Message) Kind() Kind              { return KindMessage }
func (*Receipt) Kind() Kind              { return KindReceipt }
func (*Presence) Kind() Kind             { return KindPresence }
func (*HistorySync) Kind() Kind          { return KindHistorySync }
func (*PushNameSetting) Kind() Kind      { return KindPushNameSetting }
func (*ChatPresence) Kind() Kind         { return KindChatPresence }
func (*OfflineSyncPreview) Kind() Kind   { return KindOfflineSyncPreview }
func (*OfflineSyncCompleted) Kind() Kind { return KindOfflineSyncCompleted }
func (*Unknown) Kind() Kind              { return KindUnknown }

func (e *PairingCode) Accept(v Visitor)          { v.VisitPairingCode(e) }
func (e *PairSuccess) Accept(v Visitor)          { v.VisitPairSuccess(e) }
func (e *Connected) Accept(v Visitor)            { v.VisitConnected(e) }
func (e *Disconnected) Accept(v Visitor)         { v.VisitDisconnected(e) }
func (e *LoggedOut) Accept(v Visitor)            { v.VisitLoggedOut(e) }
func (e *Message) Accept(v Visitor)              { v.VisitMessage(e) }
func (e *Receipt) Accept(v Visitor)              { v.VisitReceipt(e) }
func (e *Presence) Accept(v Visitor)             { v.VisitPresence(e) }
func (e *HistorySync) Accept(v Visitor)          { v.VisitHistorySync(e) }
func (e *PushNameSetting) Accept(v Visitor)      { v.VisitPushNameSetting(e) }
func (e *ChatPresence) Accept(v Visitor)         { v.VisitChatPresence(e) }
func (e *OfflineSyncPreview) Accept(v Visitor)   { v.VisitOfflineSyncPreview(e) }
func (e *OfflineSyncCompleted) Accept(v Visitor) { v.VisitOfflineSyncCompleted(e) }
func (e *Unknown) Accept(v Visitor)              { v.VisitUnknown(e) }

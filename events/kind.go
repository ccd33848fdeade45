package events

import "fmt"

// Kind identifies one variant of the closed event set.
type Kind uint8

const (
	KindPairingCode Kind = iota
	KindPairSuccess
	KindConnected
	KindDisconnected
	KindLoggedOut
	KindMessage
	KindReceipt
	KindPresence
	KindHistorySync
	KindPushNameSetting
	KindChatPresence
	KindOfflineSyncPreview
	KindOfflineSyncCompleted
	KindUnknown

	kindCount
)

// kindTags holds the wire tag of every kind. Tags are part of the wire format
// and must never change.
var kindTags = [...]string{
	KindPairingCode:          "pairing_code",
	KindPairSuccess:          "pair_success",
	KindConnected:            "connected",
	KindDisconnected:         "disconnected",
	KindLoggedOut:            "logged_out",
	KindMessage:              "message",
	KindReceipt:              "receipt",
	KindPresence:             "presence",
	KindHistorySync:          "history_sync",
	KindPushNameSetting:      "push_name",
	KindChatPresence:         "chat_presence",
	KindOfflineSyncPreview:   "offline_sync_preview",
	KindOfflineSyncCompleted: "offline_sync_completed",
	KindUnknown:              "unknown",
}

// Fails to compile when a kind is added without a tag.
var _ = [1]struct{}{}[len(kindTags)-int(kindCount)]

// Tag returns the wire tag for k.
func (k Kind) Tag() string {
	if k >= kindCount {
		return kindTags[KindUnknown]
	}
	return kindTags[k]
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindTags[k]
}

// ParseKind maps a wire tag back to its Kind. Unrecognized tags map to
// KindUnknown with ok set to false.
func ParseKind(tag string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if kindTags[k] == tag {
			return k, true
		}
	}
	return KindUnknown, false
}

// Kinds returns every declared kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

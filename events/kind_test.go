package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindTagsUnique(t *testing.T) {
	seen := make(map[string]Kind)
	for _, k := range Kinds() {
		tag := k.Tag()
		assert.NotEmpty(t, tag, "kind %d has no tag", k)
		if prev, dup := seen[tag]; dup {
			t.Errorf("tag %q shared by %d and %d", tag, prev, k)
		}
		seen[tag] = k
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.Tag())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	k, ok := ParseKind("call_offer")
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, k)
}

func TestKindTagsAreStable(t *testing.T) {
	assert.Equal(t, "pairing_code", KindPairingCode.Tag())
	assert.Equal(t, "push_name", KindPushNameSetting.Tag())
	assert.Equal(t, "offline_sync_completed", KindOfflineSyncCompleted.Tag())
	assert.Equal(t, "unknown", Kind(200).Tag())
	assert.Equal(t, "Kind(200)", Kind(200).String())
}

func TestMessageSenderName(t *testing.T) {
	m := &Message{From: "15551234567@s.whatsapp.net"}
	assert.Equal(t, "15551234567", m.SenderName())

	m.PushName = "Alice"
	assert.Equal(t, "Alice", m.SenderName())
}

func TestPresenceOnline(t *testing.T) {
	assert.True(t, (&Presence{}).Online())
	assert.False(t, (&Presence{Unavailable: true}).Online())
}

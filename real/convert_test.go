package real

import (
	"errors"
	"testing"
	"time"

	"github.com/opd-ai/wmbridge/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	waEvents "go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func TestConvertEventMessage(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sender := types.NewJID("15551234567", types.DefaultUserServer)

	evt := convertEvent(&waEvents.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:   sender,
				Sender: sender,
			},
			ID:        "3EB0ABCDEF",
			PushName:  "Alice",
			Timestamp: ts,
		},
		Message: &waE2E.Message{Conversation: proto.String("hello")},
	})

	msg, ok := evt.(*events.Message)
	require.True(t, ok, "expected *events.Message, got %T", evt)
	assert.Equal(t, "3EB0ABCDEF", msg.ID)
	assert.Equal(t, "15551234567@s.whatsapp.net", msg.From)
	assert.Equal(t, "15551234567@s.whatsapp.net", msg.Chat)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, ts.UnixMilli(), msg.Timestamp)
	assert.False(t, msg.IsGroup)
	assert.Equal(t, "Alice", msg.PushName)
}

func TestConvertEventLifecycle(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want events.Kind
	}{
		{"connected", &waEvents.Connected{}, events.KindConnected},
		{"disconnected", &waEvents.Disconnected{}, events.KindDisconnected},
		{"logged out", &waEvents.LoggedOut{OnConnect: true}, events.KindLoggedOut},
		{"qr", &waEvents.QR{Codes: []string{"a", "b"}}, events.KindPairingCode},
		{"offline preview", &waEvents.OfflineSyncPreview{Total: 3}, events.KindOfflineSyncPreview},
		{"offline done", &waEvents.OfflineSyncCompleted{Count: 3}, events.KindOfflineSyncCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertEvent(tt.in).Kind())
		})
	}
}

func TestConvertEventReceipt(t *testing.T) {
	chat := types.NewJID("15551234567", types.DefaultUserServer)
	evt := convertEvent(&waEvents.Receipt{
		MessageSource: types.MessageSource{Chat: chat, Sender: chat},
		MessageIDs:    []types.MessageID{"m1", "m2"},
		Type:          types.ReceiptTypeRead,
	})

	receipt, ok := evt.(*events.Receipt)
	require.True(t, ok)
	assert.Equal(t, []string{"m1", "m2"}, receipt.MessageIDs)
	assert.Equal(t, "read", receipt.Type)
	assert.Zero(t, receipt.Timestamp)
}

func TestConvertEventUnknown(t *testing.T) {
	evt := convertEvent(&waEvents.StreamReplaced{})

	unknown, ok := evt.(*events.Unknown)
	require.True(t, ok)
	assert.Equal(t, "StreamReplaced", unknown.Name)
}

func TestConvertPairingItem(t *testing.T) {
	evt := convertPairingItem(whatsmeow.QRChannelItem{
		Event:   "code",
		Code:    "2@abc",
		Timeout: 60 * time.Second,
	})
	code, ok := evt.(*events.PairingCode)
	require.True(t, ok)
	assert.Equal(t, []string{"2@abc"}, code.Codes)
	assert.Equal(t, int64(60000), code.TimeoutMs)
	assert.Empty(t, code.Error)

	evt = convertPairingItem(whatsmeow.QRChannelItem{
		Event: "error",
		Error: errors.New("pair rejected"),
	})
	code = evt.(*events.PairingCode)
	assert.Equal(t, []string{}, code.Codes)
	assert.Equal(t, "pair rejected", code.Error)
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "", messageText(nil))
	assert.Equal(t, "plain", messageText(&waE2E.Message{Conversation: proto.String("plain")}))
	assert.Equal(t, "extended", messageText(&waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("extended")},
	}))
	assert.Equal(t, "caption", messageText(&waE2E.Message{
		ImageMessage: &waE2E.ImageMessage{Caption: proto.String("caption")},
	}))
}

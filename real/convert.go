package real

import (
	"time"

	"github.com/opd-ai/wmbridge/events"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	waEvents "go.mau.fi/whatsmeow/types/events"
)

// convertEvent maps a whatsmeow event onto the closed event set. Types
// outside the set become events.Unknown carrying the original value.
func convertEvent(evt any) events.Event {
	switch v := evt.(type) {
	case *waEvents.QR:
		return &events.PairingCode{Codes: v.Codes, Event: "code"}
	case *waEvents.PairSuccess:
		return &events.PairSuccess{
			ID:           v.ID.String(),
			BusinessName: v.BusinessName,
			Platform:     v.Platform,
		}
	case *waEvents.Connected:
		return &events.Connected{}
	case *waEvents.Disconnected:
		return &events.Disconnected{}
	case *waEvents.LoggedOut:
		return &events.LoggedOut{OnConnect: v.OnConnect, Reason: int(v.Reason)}
	case *waEvents.Message:
		return &events.Message{
			ID:        v.Info.ID,
			From:      v.Info.Sender.String(),
			Chat:      v.Info.Chat.String(),
			Text:      messageText(v.Message),
			Timestamp: millis(v.Info.Timestamp),
			IsGroup:   v.Info.IsGroup,
			PushName:  v.Info.PushName,
		}
	case *waEvents.Receipt:
		ids := make([]string, 0, len(v.MessageIDs))
		for _, id := range v.MessageIDs {
			ids = append(ids, string(id))
		}
		return &events.Receipt{
			MessageIDs: ids,
			Chat:       v.Chat.String(),
			Sender:     v.Sender.String(),
			Type:       string(v.Type),
			Timestamp:  millis(v.Timestamp),
		}
	case *waEvents.Presence:
		return &events.Presence{
			From:        v.From.String(),
			Unavailable: v.Unavailable,
			LastSeen:    millis(v.LastSeen),
		}
	case *waEvents.HistorySync:
		return &events.HistorySync{Progress: int(v.Data.GetProgress())}
	case *waEvents.PushNameSetting:
		return &events.PushNameSetting{
			Name:      v.Action.GetName(),
			Timestamp: millis(v.Timestamp),
		}
	case *waEvents.ChatPresence:
		return &events.ChatPresence{
			Chat:   v.Chat.String(),
			Sender: v.Sender.String(),
			State:  string(v.State),
			Media:  string(v.Media),
		}
	case *waEvents.OfflineSyncPreview:
		return &events.OfflineSyncPreview{
			Total:          v.Total,
			AppDataChanges: v.AppDataChanges,
			Messages:       v.Messages,
			Notifications:  v.Notifications,
			Receipts:       v.Receipts,
		}
	case *waEvents.OfflineSyncCompleted:
		return &events.OfflineSyncCompleted{Count: v.Count}
	default:
		return events.NewUnknown(evt)
	}
}

// convertPairingItem maps one QR channel item onto a pairing event.
func convertPairingItem(item whatsmeow.QRChannelItem) events.Event {
	evt := &events.PairingCode{
		Codes:     []string{},
		Event:     item.Event,
		TimeoutMs: item.Timeout.Milliseconds(),
	}
	if item.Code != "" {
		evt.Codes = []string{item.Code}
	}
	if item.Error != nil {
		evt.Error = item.Error.Error()
	}
	return evt
}

// messageText resolves the display text of a message: plain conversation,
// extended text, then media captions.
func messageText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	if text := msg.GetExtendedTextMessage().GetText(); text != "" {
		return text
	}
	if text := msg.GetImageMessage().GetCaption(); text != "" {
		return text
	}
	if text := msg.GetVideoMessage().GetCaption(); text != "" {
		return text
	}
	return msg.GetDocumentMessage().GetCaption()
}

// millis converts t to epoch milliseconds; the zero time maps to 0.
func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// Package events defines the closed set of protocol events the bridge
// delivers and the envelope they travel in.
//
// # Envelope
//
// Every event is serialized as
//
//	{"type": "<tag>", "timestamp": <epoch millis>, "data": {...} | null}
//
// Tags and field names are a wire contract shared with existing consumers:
//
//	pairing_code            codes, event, timeout_ms, error
//	pair_success            id, business_name, platform
//	connected               null
//	disconnected            null
//	logged_out              on_connect, reason
//	message                 id, from, chat, text, timestamp, is_group, push_name
//	receipt                 message_ids, chat, sender, type, timestamp
//	presence                from, unavailable, last_seen
//	history_sync            progress
//	push_name               name, timestamp
//	chat_presence           chat, sender, state, media
//	offline_sync_preview    total, app_data_changes, messages, notifications, receipts
//	offline_sync_completed  count
//	unknown                 name, raw
//
// Protocol events outside the table are wrapped in [Unknown]: the tag is
// always "unknown", data.name is the source type name and data.raw the full
// source structure.
//
// # Exhaustiveness
//
// [Visitor] has one method per kind. The payload builder implements it, so a
// new kind cannot be added without a marshaling rule; the kind tag table and
// the decoder table are length-checked against the kind count at compile time.
//
// # Codecs
//
// [JSONCodec] is the default. [CBORCodec] produces the same keys in CBOR for
// consumers that opt in.
//
// Example:
//
//	m := events.NewMarshaler(events.JSONCodec{})
//	data, err := m.Marshal(&events.Message{ID: "3EB0", From: "1555@s.whatsapp.net", Text: "hi"})
//	if err != nil {
//	    // drop the event
//	}
//	env, _ := events.Decode(data)
//	evt, _ := env.Payload()
package events

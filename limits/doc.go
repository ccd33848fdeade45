// Package limits provides centralized size constants and validation functions
// for the bridge. It keeps queue sizing, outgoing message validation and the
// serialized event ceiling consistent between the client and the boundary.
//
// # Size Hierarchy
//
//   - DefaultQueueCapacity (1024 entries): per-client event queue size unless
//     configured otherwise. Bounded by MinQueueCapacity and MaxQueueCapacity.
//
//   - MaxTextMessage (64 KiB): largest outgoing text body.
//
//   - MaxRecipientLength (256 bytes): largest recipient identifier.
//
//   - DefaultEventBufferSize (64 KiB): suggested caller buffer for polling.
//
//   - MaxEventSize (4 MiB): the largest serialized event ever enqueued.
//     Oversized events are dropped by the producer instead of being handed
//     across the boundary.
//
// # Validation Functions
//
// Each validation function checks for empty input and size limit violations:
//
//	if err := limits.ValidateText(text); err != nil {
//	    // ErrMessageEmpty or ErrMessageTooLarge
//	}
//
// For custom size limits, use the generic ValidateMessageSize function:
//
//	err := limits.ValidateMessageSize(data, 4096)
package limits

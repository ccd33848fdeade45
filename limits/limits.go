// Package limits provides centralized size limits for the bridge.
// This ensures consistent validation across the queue, the client and the boundary.
package limits

import (
	"errors"
	"fmt"
)

const (
	// DefaultQueueCapacity is the number of serialized events a client buffers
	// before the oldest entry is evicted.
	DefaultQueueCapacity = 1024

	// MinQueueCapacity is the smallest accepted queue capacity.
	MinQueueCapacity = 1

	// MaxQueueCapacity bounds the per-client queue so a misconfiguration
	// cannot pin unbounded memory per handle.
	MaxQueueCapacity = 1 << 16

	// MaxTextMessage is the largest outgoing text body accepted, in bytes.
	MaxTextMessage = 65536

	// MaxRecipientLength is the largest accepted recipient identifier, in bytes.
	MaxRecipientLength = 256

	// DefaultEventBufferSize is the buffer size callers are advised to start
	// polling with. Most events fit comfortably.
	DefaultEventBufferSize = 64 * 1024

	// MaxEventSize is the largest serialized event the marshaling layer will
	// enqueue. Larger events are dropped at the producer.
	MaxEventSize = 4 * 1024 * 1024
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")

	// ErrCapacityOutOfRange indicates a queue capacity outside [MinQueueCapacity, MaxQueueCapacity]
	ErrCapacityOutOfRange = errors.New("queue capacity out of range")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(message), maxSize)
	}
	return nil
}

// ValidateText validates an outgoing text body against MaxTextMessage.
func ValidateText(text string) error {
	if len(text) == 0 {
		return ErrMessageEmpty
	}
	if len(text) > MaxTextMessage {
		return fmt.Errorf("%w: text size %d exceeds limit %d", ErrMessageTooLarge, len(text), MaxTextMessage)
	}
	return nil
}

// ValidateRecipient validates a recipient identifier against MaxRecipientLength.
func ValidateRecipient(recipient string) error {
	if len(recipient) == 0 {
		return fmt.Errorf("recipient: %w", ErrMessageEmpty)
	}
	if len(recipient) > MaxRecipientLength {
		return fmt.Errorf("%w: recipient size %d exceeds limit %d", ErrMessageTooLarge, len(recipient), MaxRecipientLength)
	}
	return nil
}

// ValidateEvent validates a serialized event against MaxEventSize.
func ValidateEvent(data []byte) error {
	return ValidateMessageSize(data, MaxEventSize)
}

// ValidateQueueCapacity reports whether capacity is an accepted queue size.
func ValidateQueueCapacity(capacity int) error {
	if capacity < MinQueueCapacity || capacity > MaxQueueCapacity {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrCapacityOutOfRange, capacity, MinQueueCapacity, MaxQueueCapacity)
	}
	return nil
}

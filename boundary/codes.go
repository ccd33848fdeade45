package boundary

import (
	"errors"
	"fmt"

	"github.com/opd-ai/wmbridge"
	"github.com/opd-ai/wmbridge/queue"
	"github.com/opd-ai/wmbridge/registry"
)

// ErrorCode is the integer result crossing the C boundary.
type ErrorCode int32

const (
	OK                ErrorCode = 0
	ErrInit           ErrorCode = -1
	ErrConnect        ErrorCode = -2
	ErrDisconnected   ErrorCode = -3 // reserved; sends while disconnected report ErrConnect
	ErrInvalidHandle  ErrorCode = -4
	ErrBufferTooSmall ErrorCode = -5
)

// String returns the C constant name of the code.
func (c ErrorCode) String() string {
	switch c {
	case OK:
		return "OK"
	case ErrInit:
		return "ERR_INIT"
	case ErrConnect:
		return "ERR_CONNECT"
	case ErrDisconnected:
		return "ERR_DISCONNECTED"
	case ErrInvalidHandle:
		return "ERR_INVALID_HANDLE"
	case ErrBufferTooSmall:
		return "ERR_BUFFER_TOO_SMALL"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int32(c))
	}
}

// CodeOf maps a Go error onto the result code table. Errors with no
// specific mapping are connection-class.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, wmbridge.ErrDestroyed), errors.Is(err, registry.ErrInvalidHandle):
		return ErrInvalidHandle
	case errors.Is(err, queue.ErrTooLarge):
		return ErrBufferTooSmall
	case errors.Is(err, wmbridge.ErrInit):
		return ErrInit
	default:
		return ErrConnect
	}
}

package main

/*
#include <stdint.h>

// Result codes returned by wm_* functions.
typedef enum WM_RESULT {
    WM_OK = 0,
    WM_ERR_INIT = -1,
    WM_ERR_CONNECT = -2,
    WM_ERR_DISCONNECTED = -3,
    WM_ERR_INVALID_HANDLE = -4,
    WM_ERR_BUFFER_TOO_SMALL = -5,
} WM_RESULT;

// Connection states returned by wm_client_state.
typedef enum WM_STATE {
    WM_STATE_CREATED = 0,
    WM_STATE_CONNECTING = 1,
    WM_STATE_CONNECTED = 2,
    WM_STATE_DISCONNECTED = 3,
    WM_STATE_DESTROYED = 4,
} WM_STATE;
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/opd-ai/wmbridge/boundary"
	"github.com/opd-ai/wmbridge/config"
	"github.com/opd-ai/wmbridge/registry"
	"github.com/sirupsen/logrus"
)

func main() {} // Required for c-shared build mode

// errShutdown is reported once wm_shutdown has run.
var errShutdown = errors.New("bridge shut down")

// The process-wide bridge is built on first use from the environment and
// torn down by wm_shutdown. Shutdown is final so handles are never reused.
var (
	bridgeMu sync.Mutex
	bridge   *boundary.Bridge
	shutdown bool
)

func currentBridge() (*boundary.Bridge, error) {
	bridgeMu.Lock()
	defer bridgeMu.Unlock()

	if shutdown {
		return nil, errShutdown
	}
	if bridge != nil {
		return bridge, nil
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.ApplyLogging(); err != nil {
		return nil, err
	}
	b, err := boundary.New(cfg)
	if err != nil {
		return nil, err
	}
	bridge = b
	return bridge, nil
}

// existingBridge returns the bridge without building one. Calls that take a
// handle cannot reference a client before the bridge exists.
func existingBridge() (*boundary.Bridge, bool) {
	bridgeMu.Lock()
	defer bridgeMu.Unlock()
	return bridge, bridge != nil
}

// recovered logs r when it is a recovered panic and reports whether it was.
func recovered(function string, r any) bool {
	if r == nil {
		return false
	}
	logrus.WithFields(logrus.Fields{
		"function": function,
		"panic":    fmt.Sprint(r),
	}).Error("Recovered panic at C boundary")
	return true
}

// goString copies a NUL-terminated C string. nil maps to "".
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(p)))
}

// goBuffer views a caller-owned buffer of capacity bytes.
func goBuffer(p *byte, capacity int32) []byte {
	if p == nil || capacity <= 0 {
		return nil
	}
	return unsafe.Slice(p, int(capacity))
}

// wm_client_new creates a client for the session store at storagePath and
// returns its handle, or 0 if the client cannot be initialized.
//
//export wm_client_new
func wm_client_new(storagePath, deviceName *byte) (handle uint64) {
	defer func() {
		if recovered("wm_client_new", recover()) {
			handle = uint64(registry.InvalidHandle)
		}
	}()

	b, err := currentBridge()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "wm_client_new",
			"error":    err.Error(),
		}).Error("Bridge unavailable")
		return uint64(registry.InvalidHandle)
	}
	return uint64(b.Create(goString(storagePath), goString(deviceName)))
}

//export wm_client_connect
func wm_client_connect(handle uint64) (code int32) {
	defer func() {
		if recovered("wm_client_connect", recover()) {
			code = int32(boundary.ErrConnect)
		}
	}()

	b, ok := existingBridge()
	if !ok {
		return int32(boundary.ErrInvalidHandle)
	}
	return int32(b.Connect(registry.Handle(handle)))
}

//export wm_client_disconnect
func wm_client_disconnect(handle uint64) (code int32) {
	defer func() {
		if recovered("wm_client_disconnect", recover()) {
			code = int32(boundary.ErrConnect)
		}
	}()

	b, ok := existingBridge()
	if !ok {
		return int32(boundary.ErrInvalidHandle)
	}
	return int32(b.Disconnect(registry.Handle(handle)))
}

// wm_client_destroy releases the handle and tears the client down. Unknown
// handles are ignored.
//
//export wm_client_destroy
func wm_client_destroy(handle uint64) {
	defer func() {
		recovered("wm_client_destroy", recover())
	}()

	if b, ok := existingBridge(); ok {
		b.Destroy(registry.Handle(handle))
	}
}

// wm_poll_event copies the next serialized event into buf. It returns the
// number of bytes written, 0 when no event is queued, or a negative result
// code. buf is written only when the whole event fits.
//
//export wm_poll_event
func wm_poll_event(handle uint64, buf *byte, capacity int32) (n int32) {
	defer func() {
		if recovered("wm_poll_event", recover()) {
			n = int32(boundary.ErrConnect)
		}
	}()

	b, ok := existingBridge()
	if !ok {
		return int32(boundary.ErrInvalidHandle)
	}
	return int32(b.PollEvent(registry.Handle(handle), goBuffer(buf, capacity)))
}

//export wm_send_message
func wm_send_message(handle uint64, recipient, text *byte) (code int32) {
	defer func() {
		if recovered("wm_send_message", recover()) {
			code = int32(boundary.ErrConnect)
		}
	}()

	b, ok := existingBridge()
	if !ok {
		return int32(boundary.ErrInvalidHandle)
	}
	return int32(b.SendMessage(registry.Handle(handle), goString(recipient), goString(text)))
}

// wm_last_error writes the last error message as a NUL-terminated string of
// at most capacity-1 bytes and returns its length, or 0 if none.
//
//export wm_last_error
func wm_last_error(handle uint64, buf *byte, capacity int32) (n int32) {
	defer func() {
		if recovered("wm_last_error", recover()) {
			n = 0
		}
	}()

	b, ok := existingBridge()
	if !ok {
		return 0
	}
	return int32(b.LastError(registry.Handle(handle), goBuffer(buf, capacity)))
}

//export wm_client_state
func wm_client_state(handle uint64) (state int32) {
	defer func() {
		if recovered("wm_client_state", recover()) {
			state = int32(boundary.ErrInvalidHandle)
		}
	}()

	b, ok := existingBridge()
	if !ok {
		return int32(boundary.ErrInvalidHandle)
	}
	return int32(b.State(registry.Handle(handle)))
}

// wm_next_event_size returns the byte size of the next queued event, 0 when
// the queue is empty.
//
//export wm_next_event_size
func wm_next_event_size(handle uint64) (size int32) {
	defer func() {
		if recovered("wm_next_event_size", recover()) {
			size = int32(boundary.ErrInvalidHandle)
		}
	}()

	b, ok := existingBridge()
	if !ok {
		return int32(boundary.ErrInvalidHandle)
	}
	return int32(b.NextEventSize(registry.Handle(handle)))
}

//export wm_pending_events
func wm_pending_events(handle uint64) (count int32) {
	defer func() {
		if recovered("wm_pending_events", recover()) {
			count = int32(boundary.ErrInvalidHandle)
		}
	}()

	b, ok := existingBridge()
	if !ok {
		return int32(boundary.ErrInvalidHandle)
	}
	return int32(b.PendingEvents(registry.Handle(handle)))
}

//export wm_client_count
func wm_client_count() int32 {
	b, ok := existingBridge()
	if !ok {
		return 0
	}
	return int32(b.Count())
}

// wm_shutdown destroys every client. Later wm_client_new calls return 0.
//
//export wm_shutdown
func wm_shutdown() {
	defer func() {
		recovered("wm_shutdown", recover())
	}()

	bridgeMu.Lock()
	b := bridge
	bridge = nil
	shutdown = true
	bridgeMu.Unlock()

	if b != nil {
		b.Close()
	}
}

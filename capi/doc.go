// Package main exports the wmbridge client API to C.
//
// # Build Instructions
//
//	go build -buildmode=c-shared -o libwmbridge.so ./capi/
//
// This generates libwmbridge.so and libwmbridge.h. The header declares the
// WM_RESULT and WM_STATE enums alongside the functions.
//
// # C API Usage
//
//	#include "libwmbridge.h"
//
//	uint64_t h = wm_client_new((GoUint8 *)"wa.db", (GoUint8 *)"My Bridge");
//	if (h == 0) {
//	    return 1; // store could not be opened
//	}
//
//	if (wm_client_connect(h) != WM_OK) {
//	    char err[256];
//	    wm_last_error(h, (GoUint8 *)err, sizeof err);
//	    fprintf(stderr, "connect: %s\n", err);
//	}
//
//	uint8_t buf[65536];
//	for (;;) {
//	    int32_t n = wm_poll_event(h, buf, sizeof buf);
//	    if (n == 0) {
//	        usleep(50 * 1000);
//	        continue;
//	    }
//	    if (n == WM_ERR_BUFFER_TOO_SMALL) {
//	        // grow to wm_next_event_size(h) and retry; the event stays queued
//	    }
//	    handle_event(buf, n); // {"type":...,"timestamp":...,"data":...}
//	}
//
//	wm_client_destroy(h);
//	wm_shutdown();
//
// # Configuration
//
// The bridge is built on the first wm_client_new call from the environment
// (see package config: WMBRIDGE_CONFIG, WMBRIDGE_BACKEND, ...). Calls taking a
// handle before then return WM_ERR_INVALID_HANDLE.
//
// # Thread Safety
//
// Every function may be called from any thread. Destroying a handle while
// other threads poll or send on it is safe: those calls observe
// WM_ERR_INVALID_HANDLE once the handle is released.
//
// # Memory
//
// Strings passed in are copied before the call returns. Output buffers are
// owned by the caller; nothing allocated by the library is returned.
package main

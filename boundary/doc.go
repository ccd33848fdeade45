// Package boundary implements the buffer protocol between foreign callers
// and wmbridge clients.
//
// Callers hold opaque non-zero handles. Every operation looks the handle up
// in an owned registry; destroyed or unknown handles yield
// ERR_INVALID_HANDLE. Results are integer codes:
//
//	OK                    0
//	ERR_INIT             -1
//	ERR_CONNECT          -2
//	ERR_DISCONNECTED     -3
//	ERR_INVALID_HANDLE   -4
//	ERR_BUFFER_TOO_SMALL -5
//
// PollEvent writes an event only when it fits completely. On
// ERR_BUFFER_TOO_SMALL the event stays queued; NextEventSize reports the
// size needed for the retry. LastError always NUL-terminates and truncates
// to fit.
//
// Package capi exports these operations to C.
package boundary

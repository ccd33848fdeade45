// Package registry maps opaque integer handles to live values.
//
// Handles are allocated from a monotonically increasing counter starting at 1;
// 0 is reserved as "no handle". A handle is never reused for the lifetime of a
// Registry, even after the value it referenced has been released.
//
// Lookups take a shared lock; Allocate and Release take the exclusive lock.
// Release hands the removed value back to the caller so that teardown runs
// outside the registry lock and never blocks concurrent lookups.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handle is an opaque reference to a registered value. The zero Handle is
// never allocated.
type Handle uint64

// InvalidHandle is the reserved "no handle" value.
const InvalidHandle Handle = 0

var (
	// ErrInvalidHandle is returned for operations against an unknown or released handle.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrClosed is returned by Allocate once the registry has been closed.
	ErrClosed = errors.New("registry closed")
)

// Registry is a thread-safe handle table.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[Handle]T
	next    Handle
	closed  bool
}

// New creates an empty registry whose first handle is 1.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[Handle]T),
		next:    1,
	}
}

// Allocate stores v and returns its new handle.
func (r *Registry[T]) Allocate(v T) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return InvalidHandle, ErrClosed
	}

	h := r.next
	r.next++
	r.entries[h] = v

	logrus.WithFields(logrus.Fields{
		"function": "Registry.Allocate",
		"handle":   h,
		"live":     len(r.entries),
	}).Debug("Handle allocated")

	return h, nil
}

// Lookup returns the value for h, or false if h is unknown or released.
func (r *Registry[T]) Lookup(h Handle) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[h]
	return v, ok
}

// Release removes h and returns the value it referenced. The caller owns the
// returned value's teardown. Releasing an unknown handle returns false.
func (r *Registry[T]) Release(h Handle) (T, bool) {
	r.mu.Lock()
	v, ok := r.entries[h]
	if ok {
		delete(r.entries, h)
	}
	live := len(r.entries)
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Registry.Release",
		"handle":   h,
		"found":    ok,
		"live":     live,
	}).Debug("Handle released")

	return v, ok
}

// Len returns the number of live handles.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Handles returns the live handles in ascending order.
func (r *Registry[T]) Handles() []Handle {
	r.mu.RLock()
	handles := make([]Handle, 0, len(r.entries))
	for h := range r.entries {
		handles = append(handles, h)
	}
	r.mu.RUnlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// Close marks the registry closed and removes every entry, returning the
// removed values in handle order. Subsequent Allocate calls fail with
// ErrClosed; lookups on the removed handles report absence.
func (r *Registry[T]) Close() []T {
	r.mu.Lock()
	r.closed = true
	handles := make([]Handle, 0, len(r.entries))
	for h := range r.entries {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	values := make([]T, 0, len(handles))
	for _, h := range handles {
		values = append(values, r.entries[h])
		delete(r.entries, h)
	}
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Registry.Close",
		"released": len(values),
	}).Info("Registry closed")

	return values
}

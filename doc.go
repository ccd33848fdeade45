// Package wmbridge exposes a stateful, event-driven WhatsApp Web client
// through a synchronous, polling, handle-based API.
//
// A [Client] owns one protocol session, one bounded event queue and one
// cancellation scope. Protocol events arrive on background goroutines, are
// marshaled into the tagged envelope defined by package events and appended
// to the queue; callers drain the queue without blocking:
//
//	client, err := wmbridge.Create(ctx, factory.NewSessionFactory(), "wa.db", "Bridge", nil)
//	if err != nil {
//	    return err
//	}
//	defer client.Destroy()
//
//	if err := client.Connect(); err != nil {
//	    log.Println(client.LastError())
//	}
//
//	buf := make([]byte, limits.DefaultEventBufferSize)
//	for {
//	    n, err := client.PollEvent(buf)
//	    if err != nil || n == 0 {
//	        break
//	    }
//	    handle(buf[:n])
//	}
//
// # Lifecycle
//
// A client moves Created -> Connecting -> Connected, drops to Disconnected
// on a failed connect, an explicit Disconnect or a disconnect reported by the
// protocol, and ends in Destroyed. Destroyed is terminal: every later call
// returns [ErrDestroyed].
//
// Connecting an unpaired device opens the pairing stream first; pairing
// codes are queued as "pairing_code" events until pairing completes or the
// client is destroyed.
//
// # Queue policy
//
// The queue keeps at most its capacity of events and evicts the oldest on
// overflow. An event that does not fit the caller's buffer stays at the head
// so the caller can retry with a buffer of [Client.NextEventSize] bytes.
//
// The C boundary over this package lives in packages boundary and capi.
package wmbridge

// Package interfaces defines the protocol capability consumed by the bridge.
//
// The bridge never speaks the messaging protocol itself. It drives an
// [ISession], which the real package implements on top of whatsmeow and the
// testing package implements in memory, so the same client code runs against
// the live network and against deterministic simulations.
//
// # Core Interfaces
//
// [ISession] exposes exactly what the client lifecycle needs:
//
//	session, err := factory.NewSessionFactory().CreateSession(ctx, "wa.db", "Bridge")
//	if err != nil {
//	    return err
//	}
//	session.AddEventHandler(func(evt events.Event) {
//	    // marshal and enqueue
//	})
//	if !session.IsPaired() {
//	    pairing, _ := session.PairingChannel(ctx)
//	    go forward(pairing)
//	}
//	err = session.Connect()
//
// [SessionConfig] carries the store address, the device display name and the
// backend selection. Validate reports missing required fields.
package interfaces

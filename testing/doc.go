// Package testing provides an in-memory simulation of the messaging protocol
// for deterministic testing of the bridge.
//
// # Overview
//
// [SimulatedSession] implements interfaces.ISession without touching the
// network or disk. It records every call so tests can assert on connect and
// send behavior, and it exposes hooks to drive the protocol side:
//
//   - Emit delivers an arbitrary event to registered handlers.
//   - SimulatePairing completes first-time device linking.
//   - SimulateDisconnect drops the transport involuntarily.
//   - FailConnect and FailSends inject errors.
//
// An unpaired session hands out a pairing stream that yields one code right
// away, so a client that connects without an identity always sees a
// "pairing_code" event.
//
// # Simulation vs Real Implementation
//
//   - Simulation (this package): used by unit and integration tests and by
//     the "simulated" backend.
//
//   - Real (real package): whatsmeow over the network, with a sqlite
//     session store.
//
// Both implementations conform to interfaces.ISession, allowing seamless
// switching via the factory package.
//
// # Usage
//
//	sim := testing.NewSimulatedSession(&interfaces.SessionConfig{
//	    StorageAddress: "test.db",
//	    DeviceName:     "TestApp",
//	    UseSimulation:  true,
//	})
//	sim.FailConnect(errors.New("network unreachable"))
package testing

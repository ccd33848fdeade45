// Package factory creates protocol sessions for the bridge.
//
// The factory hides whether a session talks to the real network through
// whatsmeow or is a deterministic simulation, so the client and boundary code
// never reference a concrete implementation.
//
// # Configuration
//
// NewSessionFactory reads these environment variables:
//   - WMBRIDGE_USE_SIMULATION: "true" or "false" to enable simulation mode
//   - WMBRIDGE_STORE_DIALECT: database/sql driver for the session store (sqlite3)
//   - WMBRIDGE_FOREIGN_KEYS: "true" or "false" to enable store foreign keys
//
// Invalid values are logged and the defaults kept.
//
// # Usage
//
//	factory := NewSessionFactory()
//	session, err := factory.CreateSession(ctx, "/var/lib/wm/store.db", "Bridge")
//	if err != nil {
//	    return err
//	}
//
// Tests create simulated sessions directly:
//
//	sim := factory.CreateSimulationForTesting(WithDeviceName("alice"))
//	sim.SetPaired(true)
package factory

// Package real provides the production protocol session for the bridge.
//
// [Session] implements interfaces.ISession on top of go.mau.fi/whatsmeow. The
// session store is a whatsmeow sqlstore container over database/sql; the
// default dialect is "sqlite3" (github.com/mattn/go-sqlite3). A bare path
// storage address is turned into a sqlite connection string with foreign
// keys enabled:
//
//	wa.db            ->  file:wa.db?_foreign_keys=on
//	file:x.db?mode=  ->  unchanged
//
// # Event conversion
//
// whatsmeow delivers its events as dynamically typed values. The session
// converts each one into the closed events set before any handler sees it;
// types outside the set are wrapped in events.Unknown with the original value
// attached. QR channel items become "pairing_code" events.
//
// # Logging
//
// [Logger] adapts whatsmeow's util/log interface to logrus so protocol logs
// share the bridge's sink and level, tagged with a "module" field.
package real

// Package config loads bridge configuration.
//
// Settings come from an optional YAML file named by WMBRIDGE_CONFIG, layered
// over [Default], then environment variables:
//
//	WMBRIDGE_BACKEND          whatsmeow | simulated
//	WMBRIDGE_QUEUE_CAPACITY   events retained per client
//	WMBRIDGE_CODEC            json | cbor
//	WMBRIDGE_SEND_TIMEOUT_MS  upper bound on one send
//	WMBRIDGE_LOG_LEVEL        logrus level name
//	WMBRIDGE_LOG_FORMAT       text | json
//
// Example file:
//
//	backend: whatsmeow
//	queue_capacity: 1024
//	codec: json
//	send_timeout_ms: 30000
//	store:
//	  dialect: sqlite3
//	  foreign_keys: true
//	logging:
//	  level: info
//	  format: json
package config

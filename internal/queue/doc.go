// Package queue persists conversion jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, stuck-job recovery, and status transitions validated against the
// job state machine. Every mutation bumps the job's revision so event
// consumers can reject stale updates. The same database holds the completed
// conversion history (capped at the most recent entries) and the persisted
// output-naming settings.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package queue

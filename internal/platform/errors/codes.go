// Package errors provides coded errors for tracker storage and sync failures.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"

	// CodeNotFound reports a missing snapshot or record.
	CodeNotFound Code = "NOT_FOUND"
	// CodeSnapshotMalformed reports a persisted payload that cannot be decoded.
	CodeSnapshotMalformed Code = "SNAPSHOT_MALFORMED"
	// CodeStaleSnapshot reports a write older than what the store already holds.
	CodeStaleSnapshot Code = "SNAPSHOT_STALE"
	// CodeRemoteUnavailable reports a transient remote store failure.
	CodeRemoteUnavailable Code = "REMOTE_UNAVAILABLE"
	// CodeStorageNotConfigured reports a nil or closed store.
	CodeStorageNotConfigured Code = "STORAGE_NOT_CONFIGURED"
)

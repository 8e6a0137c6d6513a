// Package review is the application service for studying memory items.
//
// It owns the request-facing operations: capturing and archiving items,
// listing the due set, recording single reviews and running per-user review
// sessions. Scheduling itself is delegated to srs.Service and session.Queue;
// this package adds ownership checks, persistence through
// store.MemoryItemStore inside a transaction, and event publication.
package review

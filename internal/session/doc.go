// Package session implements the ephemeral review queue: an ordered pass
// through a set of memory items tracked by a cursor.
//
// A Queue is an explicit owned value. It is not safe for concurrent use;
// callers that share one across goroutines must serialize access.
package session

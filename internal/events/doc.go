// Package events carries domain events between components without coupling
// the publisher to its consumers.
//
// The review service publishes an Event after each state change it
// persists (a recorded review, an archive toggle, a finished session).
// Handlers registered on an EventEmitter receive every event; LogHandler
// writes them to the structured log.
package events

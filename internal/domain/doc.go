// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The central entity is MemoryItem: a unit of study material together with
// its spaced-repetition scheduling state and its append-only review history.
package domain

// Package mocks provides shared test doubles for the store and service
// interfaces, so tests across packages use the same fakes.
//
// Each mock follows the same pattern: optional function fields (XxxFn)
// override a method entirely; otherwise a simple default behaviour is used,
// with error fields for injecting failures.
package mocks

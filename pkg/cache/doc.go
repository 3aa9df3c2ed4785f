// Package cache holds the status document currently served by the proxy.
//
// The store is a single slot. Readers get an immutable *Snapshot through an
// atomic load and never block; the refresher replaces the slot wholesale.
// Before the first successful refresh the slot holds the placeholder
// document.
//
// Each refresh is tagged with a generation taken when it starts. Commit and
// RecordFailure ignore anything older than what the store already holds, so
// a slow refresh cannot overwrite the result of one started after it.
package cache

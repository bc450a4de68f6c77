// Package tracker records in-flight asynchronous create and delete operations
// so that reconciliation and allocation never act on stale assumptions about
// an instance's existence.
//
// The pending set is keyed by operation identity and published through an
// atomic pointer: readers always observe either the fully-old or the
// fully-new set, never a partial update. Completion is pulled from the
// provider by polling, one status query per pending entry; there is no event
// subsystem. A provider error during polling never removes an entry.
package tracker

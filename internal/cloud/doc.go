// Package cloud wraps the Hetzner Cloud API for build-agent fleet management.
//
// The package exposes the narrow provider surface the fleet core needs:
// listing managed instances, issuing asynchronous create and terminate calls,
// and polling asynchronous operation status. Create and terminate return the
// provider's action ID without waiting for completion; tracking completion is
// the operation tracker's job.
//
// Every provider failure is returned as a wrapped error. Callers treat all of
// them as transient: the affected instance is skipped until the next sweep and
// the affected operation stays pending until the next poll.
package cloud

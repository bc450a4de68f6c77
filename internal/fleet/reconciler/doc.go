// Package reconciler periodically removes cloud instances the manager no
// longer knows about.
//
// Instances can leak: a process restart forgets in-memory registrations, an
// agent can fail to connect, a delete can be lost. The sweep diffs the
// provider's instance list against the registry's known node names for each
// managed cloud and issues an asynchronous terminate for every orphan.
// Instances already shutting down are left alone. The sweep holds no lock
// between detection and termination; an orphan claimed in that window is an
// accepted race, bounded by the sweep period.
package reconciler

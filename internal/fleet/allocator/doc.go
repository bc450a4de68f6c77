// Package allocator picks which agent configuration, and optionally which
// idle instance, should serve a new provisioning request.
//
// Selection runs in two phases: reuse an idle instance if any config has one,
// otherwise provision fresh capacity under a config that is below its limit.
// Both phases share a round-robin cursor over configs; instance selection has
// its own cursor. Cursors increase monotonically across calls and are never
// reset, so repeated single-instance requests, the dominant call pattern,
// spread evenly over eligible configs instead of always favoring the first.
// A single call's outcome therefore depends on prior call history; tests
// needing determinism inject cursor start values.
package allocator

// Package naming generates names for build-agent instances.
//
// Instance names follow the pattern {prefix}-{6char}. The random suffix
// prevents collisions when several instances of the same pool are created
// concurrently, and the prefix ties the name back to its agent configuration.
package naming

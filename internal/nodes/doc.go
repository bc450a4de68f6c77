// Package nodes provides sources for the set of agent names currently
// attached to a build coordinator. The reconciler compares cloud instances
// against this set to find orphans.
package nodes

// Package labels provides consistent labeling for cloud build-agent instances.
//
// All labels use the buildfleet.io domain prefix. The config label carries the
// name prefix of the agent configuration that created an instance; it is the
// only link between an instance and its pool and is treated as advisory, never
// authoritative.
package labels

// Package fleet defines the data model for the build-agent fleet: provider
// instances, agent configurations, and the label-based association between
// them.
//
// The association is soft. An instance carries the name prefix of the config
// that created it in a label; the label can be stale, missing, or ambiguous,
// so it is always looked up on demand and never held as an owning reference.
package fleet

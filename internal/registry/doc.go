// Package registry assembles the managed clouds the daemon operates on from
// the loaded configuration: one provider client and one node source per
// configured cloud.
package registry

// Package config loads and validates the fleet manager's YAML configuration:
// the managed clouds, their agent pools, and the timing knobs for the
// reconciliation sweep and operation polling.
package config

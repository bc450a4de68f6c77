package allocator

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/buildfleet/buildfleet/internal/fleet"
	"github.com/buildfleet/buildfleet/internal/metrics"
)

// Selection is the result of one allocation decision.
type Selection struct {
	Config *fleet.AgentConfig
	// Instance is the idle instance to reuse, or nil when the caller
	// should create a new instance under Config.
	Instance *fleet.Instance
}

// Allocator owns the round-robin cursors. One allocator instance serves the
// whole process; the cursors are its only state.
type Allocator struct {
	log logr.Logger

	mu             sync.Mutex
	configCursor   int
	instanceCursor int
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the allocator's logger.
func WithLogger(log logr.Logger) Option {
	return func(a *Allocator) {
		a.log = log
	}
}

// WithCursors sets the cursor start values. Tests use this to make a
// selection sequence deterministic.
func WithCursors(config, instance int) Option {
	return func(a *Allocator) {
		a.configCursor = config
		a.instanceCursor = instance
	}
}

// New creates an Allocator.
func New(opts ...Option) *Allocator {
	a := &Allocator{log: logr.Discard()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Select picks a (config, instance) pair for a new provisioning request.
//
// Phase A reuses an idle instance: among configs that have at least one
// provisionable instance carrying their prefix, one config and one of its
// matching instances are chosen round-robin. Phase B provisions fresh
// capacity: among configs whose instance count across allInstances (any
// status) is below their maximum, one is chosen with the same config cursor
// and returned with a nil Instance. If neither phase yields a result, Select
// returns nil.
func (a *Allocator) Select(configs []*fleet.AgentConfig, allInstances, provisionable []*fleet.Instance) *Selection {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(provisionable) > 0 {
		if sel := a.selectReuse(configs, provisionable); sel != nil {
			return sel
		}
	}
	return a.selectFresh(configs, allInstances)
}

func (a *Allocator) selectReuse(configs []*fleet.AgentConfig, provisionable []*fleet.Instance) *Selection {
	var candidates []*fleet.AgentConfig
	for _, cfg := range configs {
		if fleet.CountForConfig(cfg, provisionable) > 0 {
			candidates = append(candidates, cfg)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	cfg := candidates[a.nextConfigIndex(len(candidates))]
	matching := fleet.InstancesForConfig(cfg, provisionable)
	inst := matching[a.nextInstanceIndex(len(matching))]

	a.log.V(1).Info("reusing idle instance", "config", cfg.NamePrefix, "instance", inst.Name)
	metrics.RecordAllocation(cfg.NamePrefix, "reuse")
	return &Selection{Config: cfg, Instance: inst}
}

func (a *Allocator) selectFresh(configs []*fleet.AgentConfig, allInstances []*fleet.Instance) *Selection {
	var candidates []*fleet.AgentConfig
	for _, cfg := range configs {
		if fleet.CountForConfig(cfg, allInstances) < cfg.MaxInstances {
			candidates = append(candidates, cfg)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	cfg := candidates[a.nextConfigIndex(len(candidates))]

	a.log.V(1).Info("provisioning fresh capacity", "config", cfg.NamePrefix)
	metrics.RecordAllocation(cfg.NamePrefix, "create")
	return &Selection{Config: cfg}
}

func (a *Allocator) nextConfigIndex(n int) int {
	i := cursorIndex(a.configCursor, n)
	a.configCursor++
	return i
}

func (a *Allocator) nextInstanceIndex(n int) int {
	i := cursorIndex(a.instanceCursor, n)
	a.instanceCursor++
	return i
}

// cursorIndex reduces a cursor to a list index. The modulo runs first so the
// absolute value cannot overflow back to a negative number, even at the int
// boundaries.
func cursorIndex(cursor, n int) int {
	i := cursor % n
	if i < 0 {
		i = -i
	}
	return i
}

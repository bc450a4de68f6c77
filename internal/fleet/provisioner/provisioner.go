package provisioner

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/buildfleet/buildfleet/internal/cloud"
	"github.com/buildfleet/buildfleet/internal/fleet"
	"github.com/buildfleet/buildfleet/internal/fleet/allocator"
	"github.com/buildfleet/buildfleet/internal/fleet/tracker"
	"github.com/buildfleet/buildfleet/internal/util/labels"
	"github.com/buildfleet/buildfleet/internal/util/naming"
)

// ErrNoCapacity is returned when no config can serve the request: nothing is
// idle and every pool is at its limit.
var ErrNoCapacity = errors.New("no agent config has capacity")

// Result is the outcome of one provisioning request.
type Result struct {
	Config *fleet.AgentConfig
	// Instance is the agent serving the request. For a reused agent it is
	// the existing instance; for a fresh one it describes the instance
	// whose creation is now in flight.
	Instance *fleet.Instance
	// Created is true when a new instance was requested from the provider.
	Created bool
}

// Provisioner allocates agents for one managed cloud.
type Provisioner struct {
	cloudName string
	client    cloud.InstanceClient
	tracker   *tracker.Tracker
	alloc     *allocator.Allocator
	configs   []*fleet.AgentConfig
	log       logr.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLogger sets the provisioner's logger.
func WithLogger(log logr.Logger) Option {
	return func(p *Provisioner) {
		p.log = log
	}
}

// New creates a Provisioner for one cloud.
func New(cloudName string, client cloud.InstanceClient, tr *tracker.Tracker, alloc *allocator.Allocator, configs []*fleet.AgentConfig, opts ...Option) *Provisioner {
	p := &Provisioner{
		cloudName: cloudName,
		client:    client,
		tracker:   tr,
		alloc:     alloc,
		configs:   configs,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision picks an agent for a new work request. idle is the set of
// instance names whose agents are currently connected but unoccupied,
// supplied by the host's scheduler.
func (p *Provisioner) Provision(ctx context.Context, idle map[string]struct{}) (*Result, error) {
	servers, err := p.client.ListInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot fleet: %w", err)
	}
	all := fleet.FromServers(servers)
	all = append(all, p.pendingCreates(all)...)

	var provisionable []*fleet.Instance
	for _, inst := range all {
		if inst.Status != fleet.StatusRunning {
			continue
		}
		if _, ok := idle[inst.Name]; !ok {
			continue
		}
		if p.tracker.HasPendingDelete(inst.Name) {
			continue
		}
		provisionable = append(provisionable, inst)
	}

	sel := p.alloc.Select(p.configs, all, provisionable)
	if sel == nil {
		return nil, ErrNoCapacity
	}
	if sel.Instance != nil {
		p.log.Info("reusing idle agent", "config", sel.Config.NamePrefix, "instance", sel.Instance.Name)
		return &Result{Config: sel.Config, Instance: sel.Instance}, nil
	}

	return p.create(ctx, sel.Config)
}

// Deprovision starts deletion of an agent instance and records the pending
// operation.
func (p *Provisioner) Deprovision(ctx context.Context, inst *fleet.Instance) error {
	opID, err := p.client.TerminateInstanceAsync(ctx, inst.Name)
	if err != nil {
		return fmt.Errorf("failed to deprovision %s: %w", inst.Name, err)
	}
	p.tracker.Add(tracker.Operation{
		Name:       inst.Name,
		Zone:       inst.Zone,
		NamePrefix: inst.ConfigPrefix(),
		ID:         opID,
		Kind:       tracker.KindDelete,
	})
	p.log.Info("agent deprovisioning", "instance", inst.Name, "operation", opID)
	return nil
}

func (p *Provisioner) create(ctx context.Context, cfg *fleet.AgentConfig) (*Result, error) {
	name := naming.Instance(cfg.NamePrefix)
	instLabels := labels.NewBuilder().
		WithConfig(cfg.NamePrefix).
		WithCloud(p.cloudName).
		Merge(cfg.Labels).
		Build()

	opID, err := p.client.CreateInstanceAsync(ctx, cloud.InstanceCreateOpts{
		Name:       name,
		ServerType: cfg.ServerType,
		Image:      cfg.Image,
		Location:   cfg.Location,
		Labels:     instLabels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create instance under config %s: %w", cfg.NamePrefix, err)
	}

	p.tracker.Add(tracker.Operation{
		Name:       name,
		Zone:       cfg.Location,
		NamePrefix: cfg.NamePrefix,
		ID:         opID,
		Kind:       tracker.KindInsert,
	})
	p.log.Info("agent instance creation started",
		"config", cfg.NamePrefix, "instance", name, "operation", opID)

	return &Result{
		Config: cfg,
		Instance: &fleet.Instance{
			Name:   name,
			Zone:   cfg.Location,
			Status: fleet.StatusProvisioning,
			Labels: instLabels,
		},
		Created: true,
	}, nil
}

// pendingCreates returns synthetic instances for in-flight creates that the
// provider listing does not show yet. They occupy capacity slots during
// phase-B accounting but are never provisionable.
func (p *Provisioner) pendingCreates(listed []*fleet.Instance) []*fleet.Instance {
	existing := make(map[string]struct{}, len(listed))
	for _, inst := range listed {
		existing[inst.Name] = struct{}{}
	}

	var out []*fleet.Instance
	for _, cfg := range p.configs {
		for _, op := range p.tracker.PendingInsertsForConfig(cfg.NamePrefix) {
			if _, ok := existing[op.Name]; ok {
				continue
			}
			out = append(out, &fleet.Instance{
				Name:   op.Name,
				Zone:   op.Zone,
				Status: fleet.StatusProvisioning,
				Labels: map[string]string{labels.KeyConfig: op.NamePrefix},
			})
		}
	}
	return out
}

package fleet

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/buildfleet/buildfleet/internal/util/labels"
)

// InstanceStatus is the observed lifecycle state of a provider instance.
// Transitions are provider-driven; this process observes them, it never
// causes them directly.
type InstanceStatus string

const (
	// StatusProvisioning covers instances still being created or booted.
	StatusProvisioning InstanceStatus = "provisioning"
	// StatusRunning covers instances that are up, including ones the
	// provider is currently migrating or rebuilding.
	StatusRunning InstanceStatus = "running"
	// StatusStopping covers instances with a shutdown or delete in
	// progress. Reconciliation leaves these alone to avoid racing an
	// existing termination.
	StatusStopping InstanceStatus = "stopping"
	// StatusTerminated covers instances that are powered off or gone.
	StatusTerminated InstanceStatus = "terminated"
	// StatusUnknown covers anything the provider reports that has no
	// mapping here.
	StatusUnknown InstanceStatus = "unknown"
)

// Instance is a provider-side compute instance acting as a build agent.
type Instance struct {
	// Name is unique within a cloud.
	Name   string
	Zone   string
	Status InstanceStatus
	Labels map[string]string
}

// ConfigPrefix returns the name prefix of the config this instance is
// associated with, or "" if the label is missing.
func (i *Instance) ConfigPrefix() string {
	return i.Labels[labels.KeyConfig]
}

// FromServer converts an hcloud server into the fleet data model.
func FromServer(s *hcloud.Server) *Instance {
	inst := &Instance{
		Name:   s.Name,
		Status: mapServerStatus(s.Status),
		Labels: s.Labels,
	}
	if s.Datacenter != nil && s.Datacenter.Location != nil {
		inst.Zone = s.Datacenter.Location.Name
	}
	return inst
}

// FromServers converts a provider listing in one pass.
func FromServers(servers []*hcloud.Server) []*Instance {
	instances := make([]*Instance, 0, len(servers))
	for _, s := range servers {
		instances = append(instances, FromServer(s))
	}
	return instances
}

func mapServerStatus(s hcloud.ServerStatus) InstanceStatus {
	switch s {
	case hcloud.ServerStatusInitializing, hcloud.ServerStatusStarting:
		return StatusProvisioning
	case hcloud.ServerStatusRunning, hcloud.ServerStatusMigrating, hcloud.ServerStatusRebuilding:
		return StatusRunning
	case hcloud.ServerStatusStopping, hcloud.ServerStatusDeleting:
		return StatusStopping
	case hcloud.ServerStatusOff:
		return StatusTerminated
	default:
		return StatusUnknown
	}
}

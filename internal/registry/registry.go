package registry

import (
	"context"
	"fmt"
	"os"

	"github.com/buildfleet/buildfleet/internal/cloud"
	"github.com/buildfleet/buildfleet/internal/config"
	"github.com/buildfleet/buildfleet/internal/fleet/reconciler"
	"github.com/buildfleet/buildfleet/internal/nodes"
)

// ManagedCloud pairs a provider client with the node source for one cloud.
// It implements reconciler.Cloud.
type ManagedCloud struct {
	name   string
	client cloud.InstanceClient
	source nodes.Source
}

// NewManagedCloud returns a cloud handle for the reconciler.
func NewManagedCloud(name string, client cloud.InstanceClient, source nodes.Source) *ManagedCloud {
	return &ManagedCloud{name: name, client: client, source: source}
}

// Name implements reconciler.Cloud.
func (c *ManagedCloud) Name() string { return c.name }

// Client implements reconciler.Cloud.
func (c *ManagedCloud) Client() cloud.InstanceClient { return c.client }

// KnownNodeNames implements reconciler.Cloud.
func (c *ManagedCloud) KnownNodeNames(ctx context.Context) (map[string]struct{}, error) {
	return c.source.Names(ctx)
}

// Registry is a fixed list of managed clouds. It implements
// reconciler.Registry.
type Registry struct {
	clouds []reconciler.Cloud
}

// New returns a registry over the given clouds.
func New(clouds ...reconciler.Cloud) *Registry {
	return &Registry{clouds: clouds}
}

// ManagedClouds implements reconciler.Registry.
func (r *Registry) ManagedClouds() []reconciler.Cloud {
	return r.clouds
}

// FromConfig builds the registry from the configuration, resolving API
// tokens from the environment. Every cloud must carry a nodesEndpoint; a
// cloud without one could never distinguish orphans from working agents.
func FromConfig(cfg *config.Config) (*Registry, error) {
	clouds := make([]reconciler.Cloud, 0, len(cfg.Clouds))
	for i := range cfg.Clouds {
		cc := &cfg.Clouds[i]

		token := os.Getenv(cc.TokenEnv)
		if token == "" {
			return nil, fmt.Errorf("cloud %s: environment variable %s is not set", cc.Name, cc.TokenEnv)
		}
		if cc.NodesEndpoint == "" {
			return nil, fmt.Errorf("cloud %s: nodesEndpoint is required", cc.Name)
		}

		clouds = append(clouds, NewManagedCloud(
			cc.Name,
			cloud.NewRealClient(token, cc.Name),
			nodes.NewHTTPSource(cc.NodesEndpoint),
		))
	}
	return New(clouds...), nil
}

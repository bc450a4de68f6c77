package handlers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildfleet/buildfleet/internal/cloud"
	"github.com/buildfleet/buildfleet/internal/config"
	"github.com/buildfleet/buildfleet/internal/nodes"
	"github.com/buildfleet/buildfleet/internal/registry"
	"github.com/buildfleet/buildfleet/internal/util/labels"
)

// swapFactories installs test doubles for the package-level factory
// variables and restores them when the test ends.
func swapFactories(t *testing.T, cfg *config.Config, reg *registry.Registry) {
	t.Helper()

	origLoad := loadConfig
	origRegistry := newRegistry
	t.Cleanup(func() {
		loadConfig = origLoad
		newRegistry = origRegistry
	})

	loadConfig = func(string) (*config.Config, error) { return cfg, nil }
	newRegistry = func(*config.Config) (*registry.Registry, error) { return reg, nil }
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Clouds = []config.CloudConfig{{
		Name:          "ci",
		Location:      "fsn1",
		TokenEnv:      "HCLOUD_TOKEN",
		NodesEndpoint: "http://coordinator.internal/agents",
		Agents: []config.AgentPool{
			{NamePrefix: "go-large", MaxInstances: 4, ServerType: "cx41", Image: "ci-agent"},
		},
	}}
	return &cfg
}

func TestStatus(t *testing.T) {
	client := &cloud.MockClient{
		ListInstancesFunc: func(context.Context) ([]*hcloud.Server, error) {
			return []*hcloud.Server{
				{
					Name:   "go-large-aaa111",
					Status: hcloud.ServerStatusRunning,
					Labels: map[string]string{labels.KeyConfig: "go-large"},
				},
				{
					Name:   "go-large-bbb222",
					Status: hcloud.ServerStatusInitializing,
					Labels: map[string]string{labels.KeyConfig: "go-large"},
				},
			}, nil
		},
	}
	reg := registry.New(registry.NewManagedCloud("ci", client, nodes.Static{}))
	swapFactories(t, testConfig(), reg)

	var buf bytes.Buffer
	err := Status(context.Background(), "unused", &buf)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "CLOUD")
	assert.Contains(t, out, "ci")
	assert.Contains(t, out, "go-large")
	assert.Contains(t, out, "2")
}

func TestStatus_ListFailure(t *testing.T) {
	client := &cloud.MockClient{
		ListInstancesFunc: func(context.Context) ([]*hcloud.Server, error) {
			return nil, errors.New("provider unavailable")
		},
	}
	reg := registry.New(registry.NewManagedCloud("ci", client, nodes.Static{}))
	swapFactories(t, testConfig(), reg)

	err := Status(context.Background(), "unused", &bytes.Buffer{})

	assert.ErrorContains(t, err, "cloud ci")
}

func TestSweep_TerminatesOrphans(t *testing.T) {
	var terminated []string
	client := &cloud.MockClient{
		ListInstancesFunc: func(context.Context) ([]*hcloud.Server, error) {
			return []*hcloud.Server{
				{
					Name:   "go-large-known1",
					Status: hcloud.ServerStatusRunning,
					Labels: map[string]string{labels.KeyConfig: "go-large"},
				},
				{
					Name:   "go-large-orphan",
					Status: hcloud.ServerStatusRunning,
					Labels: map[string]string{labels.KeyConfig: "go-large"},
				},
			}, nil
		},
		TerminateInstanceAsyncFunc: func(_ context.Context, name string) (int64, error) {
			terminated = append(terminated, name)
			return 1, nil
		},
	}
	reg := registry.New(registry.NewManagedCloud("ci", client, nodes.Static{"go-large-known1": {}}))
	swapFactories(t, testConfig(), reg)

	err := Sweep(context.Background(), "unused", false)

	require.NoError(t, err)
	assert.Equal(t, []string{"go-large-orphan"}, terminated)
}

func TestSweep_ConfigLoadFailure(t *testing.T) {
	origLoad := loadConfig
	t.Cleanup(func() { loadConfig = origLoad })

	boom := errors.New("no such file")
	loadConfig = func(string) (*config.Config, error) { return nil, boom }

	err := Sweep(context.Background(), "missing.yaml", false)

	assert.ErrorIs(t, err, boom)
}

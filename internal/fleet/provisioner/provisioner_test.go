package provisioner

import (
	"context"
	"errors"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildfleet/buildfleet/internal/cloud"
	"github.com/buildfleet/buildfleet/internal/fleet"
	"github.com/buildfleet/buildfleet/internal/fleet/allocator"
	"github.com/buildfleet/buildfleet/internal/fleet/tracker"
	"github.com/buildfleet/buildfleet/internal/util/labels"
	"github.com/buildfleet/buildfleet/internal/util/naming"
)

func testConfig(prefix string, max int) *fleet.AgentConfig {
	return &fleet.AgentConfig{
		NamePrefix:   prefix,
		MaxInstances: max,
		ServerType:   "cx41",
		Image:        "ci-agent",
		Location:     "fsn1",
	}
}

func labeledServer(name, prefix string, status hcloud.ServerStatus) *hcloud.Server {
	return &hcloud.Server{
		Name:   name,
		Status: status,
		Labels: map[string]string{labels.KeyConfig: prefix},
	}
}

func newProvisioner(client cloud.InstanceClient, configs ...*fleet.AgentConfig) (*Provisioner, *tracker.Tracker) {
	tr := tracker.New(client)
	alloc := allocator.New(allocator.WithCursors(0, 0))
	return New("ci", client, tr, alloc, configs), tr
}

func TestProvision_ReusesIdleAgent(t *testing.T) {
	t.Parallel()

	client := &cloud.MockClient{
		ListInstancesFunc: func(_ context.Context) ([]*hcloud.Server, error) {
			return []*hcloud.Server{labeledServer("go-large-aaa111", "go-large", hcloud.ServerStatusRunning)}, nil
		},
		CreateInstanceAsyncFunc: func(_ context.Context, _ cloud.InstanceCreateOpts) (int64, error) {
			t.Fatal("reuse must not create a new instance")
			return 0, nil
		},
	}
	p, tr := newProvisioner(client, testConfig("go-large", 4))

	res, err := p.Provision(context.Background(), map[string]struct{}{"go-large-aaa111": {}})

	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "go-large-aaa111", res.Instance.Name)
	assert.Empty(t, tr.Get(), "reuse records no operation")
}

func TestProvision_CreatesWhenNothingIdle(t *testing.T) {
	t.Parallel()

	var created cloud.InstanceCreateOpts
	client := &cloud.MockClient{
		CreateInstanceAsyncFunc: func(_ context.Context, opts cloud.InstanceCreateOpts) (int64, error) {
			created = opts
			return 42, nil
		},
	}
	p, tr := newProvisioner(client, testConfig("go-large", 4))

	res, err := p.Provision(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.True(t, naming.HasPrefix(res.Instance.Name, "go-large"))
	assert.Equal(t, fleet.StatusProvisioning, res.Instance.Status)

	assert.Equal(t, res.Instance.Name, created.Name)
	assert.Equal(t, "cx41", created.ServerType)
	assert.Equal(t, "go-large", created.Labels[labels.KeyConfig])
	assert.Equal(t, "ci", created.Labels[labels.KeyCloud])
	assert.Equal(t, labels.ManagedByFleet, created.Labels[labels.KeyManagedBy])

	ops := tr.Get()
	require.Len(t, ops, 1)
	assert.Equal(t, tracker.KindInsert, ops[0].Kind)
	assert.Equal(t, int64(42), ops[0].ID)
	assert.Equal(t, "go-large", ops[0].NamePrefix)
}

func TestProvision_BusyAgentNotReused(t *testing.T) {
	t.Parallel()

	// The running instance is not in the idle set, so a fresh one is
	// created instead.
	client := &cloud.MockClient{
		ListInstancesFunc: func(_ context.Context) ([]*hcloud.Server, error) {
			return []*hcloud.Server{labeledServer("go-large-aaa111", "go-large", hcloud.ServerStatusRunning)}, nil
		},
	}
	p, _ := newProvisioner(client, testConfig("go-large", 4))

	res, err := p.Provision(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestProvision_PendingDeleteNotReused(t *testing.T) {
	t.Parallel()

	client := &cloud.MockClient{
		ListInstancesFunc: func(_ context.Context) ([]*hcloud.Server, error) {
			return []*hcloud.Server{labeledServer("go-large-aaa111", "go-large", hcloud.ServerStatusRunning)}, nil
		},
	}
	p, tr := newProvisioner(client, testConfig("go-large", 4))
	tr.Add(tracker.Operation{
		Name: "go-large-aaa111", Zone: "fsn1", NamePrefix: "go-large", ID: 7, Kind: tracker.KindDelete,
	})

	res, err := p.Provision(context.Background(), map[string]struct{}{"go-large-aaa111": {}})

	require.NoError(t, err)
	assert.True(t, res.Created, "an instance being deleted must not be reused")
}

func TestProvision_PendingInsertsCountTowardCapacity(t *testing.T) {
	t.Parallel()

	client := &cloud.MockClient{}
	p, tr := newProvisioner(client, testConfig("go-large", 1))
	tr.Add(tracker.Operation{
		Name: "go-large-bbb222", Zone: "fsn1", NamePrefix: "go-large", ID: 9, Kind: tracker.KindInsert,
	})

	_, err := p.Provision(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoCapacity,
		"an in-flight create occupies the pool's only slot")
}

func TestProvision_NoCapacity(t *testing.T) {
	t.Parallel()

	client := &cloud.MockClient{
		ListInstancesFunc: func(_ context.Context) ([]*hcloud.Server, error) {
			return []*hcloud.Server{labeledServer("go-large-aaa111", "go-large", hcloud.ServerStatusRunning)}, nil
		},
	}
	p, _ := newProvisioner(client, testConfig("go-large", 1))

	_, err := p.Provision(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoCapacity)
}

func TestProvision_ListFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("provider unavailable")
	client := &cloud.MockClient{
		ListInstancesFunc: func(_ context.Context) ([]*hcloud.Server, error) {
			return nil, boom
		},
	}
	p, _ := newProvisioner(client, testConfig("go-large", 4))

	_, err := p.Provision(context.Background(), nil)

	assert.ErrorIs(t, err, boom)
}

func TestProvision_CreateFailureRecordsNothing(t *testing.T) {
	t.Parallel()

	boom := errors.New("quota exceeded")
	client := &cloud.MockClient{
		CreateInstanceAsyncFunc: func(_ context.Context, _ cloud.InstanceCreateOpts) (int64, error) {
			return 0, boom
		},
	}
	p, tr := newProvisioner(client, testConfig("go-large", 4))

	_, err := p.Provision(context.Background(), nil)

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, tr.Get(), "a failed create must not leave a pending operation")
}

func TestDeprovision(t *testing.T) {
	t.Parallel()

	client := &cloud.MockClient{
		TerminateInstanceAsyncFunc: func(_ context.Context, name string) (int64, error) {
			assert.Equal(t, "go-large-aaa111", name)
			return 55, nil
		},
	}
	p, tr := newProvisioner(client, testConfig("go-large", 4))

	err := p.Deprovision(context.Background(), &fleet.Instance{
		Name:   "go-large-aaa111",
		Zone:   "fsn1",
		Labels: map[string]string{labels.KeyConfig: "go-large"},
	})

	require.NoError(t, err)
	ops := tr.Get()
	require.Len(t, ops, 1)
	assert.Equal(t, tracker.KindDelete, ops[0].Kind)
	assert.Equal(t, int64(55), ops[0].ID)
	assert.Equal(t, "go-large", ops[0].NamePrefix)
}

func TestDeprovision_Failure(t *testing.T) {
	t.Parallel()

	boom := errors.New("provider unavailable")
	client := &cloud.MockClient{
		TerminateInstanceAsyncFunc: func(_ context.Context, _ string) (int64, error) {
			return 0, boom
		},
	}
	p, tr := newProvisioner(client, testConfig("go-large", 4))

	err := p.Deprovision(context.Background(), &fleet.Instance{Name: "go-large-aaa111"})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, tr.Get())
}

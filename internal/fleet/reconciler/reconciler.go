package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/buildfleet/buildfleet/internal/cloud"
	"github.com/buildfleet/buildfleet/internal/fleet"
	"github.com/buildfleet/buildfleet/internal/metrics"
	"github.com/buildfleet/buildfleet/internal/util/async"
)

// Cloud is one managed provider-backed pool, supplied by the host.
type Cloud interface {
	// Name identifies the cloud in logs and metrics.
	Name() string
	// Client is the provider client scoped to this cloud.
	Client() cloud.InstanceClient
	// KnownNodeNames returns the names of the instances the manager
	// currently considers live agents. It is recomputed fresh on every
	// sweep; the reconciler never caches it.
	KnownNodeNames(ctx context.Context) (map[string]struct{}, error)
}

// Registry enumerates the managed clouds. Supplied by the host rather than
// discovered here.
type Registry interface {
	ManagedClouds() []Cloud
}

// DefaultInterval is the sweep period used when none is configured.
const DefaultInterval = time.Hour

// Reconciler runs the orphan sweep across all managed clouds.
type Reconciler struct {
	registry Registry
	log      logr.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the reconciler's logger.
func WithLogger(log logr.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// New creates a Reconciler over the given registry.
func New(registry Registry, opts ...Option) *Reconciler {
	r := &Reconciler{
		registry: registry,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one full sweep. It is the injected "tick": the host calls it
// on its period, and the serve loop wraps it in a ticker. Clouds are swept
// concurrently; a failure in one never prevents sweeping the others, and
// Run never returns an error or panics; all effects are provider calls and
// log lines.
func (r *Reconciler) Run(ctx context.Context) {
	r.log.V(1).Info("starting lost-instance sweep")
	clouds := r.registry.ManagedClouds()
	tasks := make([]async.Task, 0, len(clouds))
	for _, c := range clouds {
		c := c
		tasks = append(tasks, async.Task{
			Name: c.Name(),
			Run: func(ctx context.Context) error {
				return r.sweepCloud(ctx, c)
			},
		})
	}
	if err := async.RunAll(ctx, tasks); err != nil {
		r.log.Error(err, "sweep finished with errors")
	}
}

// Start runs sweeps on the given interval until ctx is cancelled. The first
// sweep fires after one interval, not immediately.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Run(ctx)
		}
	}
}

// sweepCloud reconciles a single cloud. A list or known-node failure skips
// the cloud for this sweep; the error is reported to the caller for the
// sweep summary.
func (r *Reconciler) sweepCloud(ctx context.Context, c Cloud) error {
	log := r.log.WithValues("cloud", c.Name())
	start := time.Now()

	servers, err := c.Client().ListInstances(ctx)
	if err != nil {
		metrics.RecordSweep(c.Name(), "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to list instances: %w", err)
	}

	known, err := c.KnownNodeNames(ctx)
	if err != nil {
		metrics.RecordSweep(c.Name(), "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to fetch known nodes: %w", err)
	}

	for _, inst := range fleet.FromServers(servers) {
		if !shouldTerminate(inst, known) {
			continue
		}
		log.Info("instance not known locally, terminating", "instance", inst.Name, "zone", inst.Zone)
		if _, err := c.Client().TerminateInstanceAsync(ctx, inst.Name); err != nil {
			// No retry within a sweep: the orphan is re-detected next
			// period.
			log.Error(err, "failed to terminate orphaned instance", "instance", inst.Name)
			metrics.RecordTerminateFailure(c.Name())
			continue
		}
		metrics.RecordOrphanTerminated(c.Name())
	}

	metrics.RecordSweep(c.Name(), "ok", time.Since(start).Seconds())
	return nil
}

// shouldTerminate reports whether the instance is orphaned: not already
// shutting down, and absent from the known node set.
func shouldTerminate(inst *fleet.Instance, known map[string]struct{}) bool {
	if inst.Status == fleet.StatusStopping {
		return false
	}
	_, ok := known[inst.Name]
	return !ok
}

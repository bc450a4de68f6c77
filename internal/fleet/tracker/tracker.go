package tracker

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/buildfleet/buildfleet/internal/cloud"
	"github.com/buildfleet/buildfleet/internal/metrics"
)

// Kind distinguishes instance creation from instance deletion.
type Kind string

const (
	KindInsert Kind = "insert"
	KindDelete Kind = "delete"
)

// Operation identifies one in-flight asynchronous provider call. The struct
// is comparable; value-equal operations are a single logical entry.
type Operation struct {
	// Name is the instance the operation acts on.
	Name string
	Zone string
	// NamePrefix is the originating config's stable key.
	NamePrefix string
	// ID is the provider's opaque operation identifier.
	ID   int64
	Kind Kind
}

type pendingSet = map[Operation]time.Time

// Tracker is a de-duplicated set of pending operations.
type Tracker struct {
	client cloud.InstanceClient
	log    logr.Logger
	maxAge time.Duration
	now    func() time.Time

	// mu serializes writers; readers go through the pointer only.
	mu      sync.Mutex
	pending atomic.Pointer[pendingSet]
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the tracker's logger.
func WithLogger(log logr.Logger) Option {
	return func(t *Tracker) {
		t.log = log
	}
}

// WithMaxAge sets how long an operation may stay pending before it is dropped
// and surfaced as failed. Zero disables expiry.
func WithMaxAge(d time.Duration) Option {
	return func(t *Tracker) {
		t.maxAge = d
	}
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// DefaultMaxAge is how long an operation may stay pending before the tracker
// gives up on it. The provider normally settles actions within minutes.
const DefaultMaxAge = 2 * time.Hour

// New creates a Tracker polling the given client.
func New(client cloud.InstanceClient, opts ...Option) *Tracker {
	t := &Tracker{
		client: client,
		log:    logr.Discard(),
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	empty := make(pendingSet)
	t.pending.Store(&empty)
	return t
}

// Add inserts the operation into the pending set. Adding a value-equal
// operation again is a no-op; the original entry and its age are kept.
func (t *Tracker) Add(op Operation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := *t.pending.Load()
	if _, ok := current[op]; ok {
		return
	}

	next := make(pendingSet, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[op] = t.now()
	t.pending.Store(&next)
	t.publishGauges(next)

	t.log.V(1).Info("operation added", "kind", op.Kind, "instance", op.Name, "operation", op.ID)
}

// Get returns a snapshot of the pending set without any provider calls.
func (t *Tracker) Get() []Operation {
	current := *t.pending.Load()
	ops := make([]Operation, 0, len(current))
	for op := range current {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Name != ops[j].Name {
			return ops[i].Name < ops[j].Name
		}
		return ops[i].ID < ops[j].ID
	})
	return ops
}

// HasPendingDelete reports whether a delete for the named instance is in
// flight.
func (t *Tracker) HasPendingDelete(name string) bool {
	for op := range *t.pending.Load() {
		if op.Kind == KindDelete && op.Name == name {
			return true
		}
	}
	return false
}

// PendingInsertsForConfig returns the in-flight creates originating from the
// given config prefix.
func (t *Tracker) PendingInsertsForConfig(namePrefix string) []Operation {
	var out []Operation
	for op := range *t.pending.Load() {
		if op.Kind == KindInsert && op.NamePrefix == namePrefix {
			out = append(out, op)
		}
	}
	return out
}

// RemoveCompleted polls the provider for every pending entry and drops the
// ones reported terminal. A non-terminal status or a failed query leaves the
// entry pending; errors never cause premature removal. Entries older than
// the max-age policy are dropped and surfaced as failed.
func (t *Tracker) RemoveCompleted(ctx context.Context) {
	snapshot := *t.pending.Load()

	completed := make(map[Operation]string, len(snapshot))
	for op := range snapshot {
		state, err := t.client.GetOperationStatus(ctx, op.ID)
		if err != nil {
			t.log.V(1).Info("operation status query failed, keeping pending",
				"instance", op.Name, "operation", op.ID, "error", err.Error())
			continue
		}
		if !state.Status.Terminal() {
			continue
		}
		if state.Status == cloud.OperationStatusError {
			t.log.Info("operation finished with provider error",
				"kind", op.Kind, "instance", op.Name, "operation", op.ID, "message", state.Message)
			completed[op] = "error"
			continue
		}
		completed[op] = "success"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Rebuild from the current set, not the polled snapshot, so operations
	// added while polling are preserved.
	current := *t.pending.Load()
	next := make(pendingSet, len(current))
	var completedNames, expiredNames []string
	for op, added := range current {
		if outcome, ok := completed[op]; ok {
			completedNames = append(completedNames, op.Name)
			metrics.RecordOperationCompleted(string(op.Kind), outcome)
			continue
		}
		if t.maxAge > 0 && t.now().Sub(added) > t.maxAge {
			expiredNames = append(expiredNames, op.Name)
			metrics.RecordOperationExpired(string(op.Kind))
			continue
		}
		next[op] = added
	}
	t.pending.Store(&next)
	t.publishGauges(next)

	if len(completedNames) > 0 {
		sort.Strings(completedNames)
		t.log.Info("operations completed", "instances", strings.Join(completedNames, ", "))
	}
	if len(expiredNames) > 0 {
		sort.Strings(expiredNames)
		t.log.Info("operations expired without completing, dropping",
			"maxAge", t.maxAge.String(), "instances", strings.Join(expiredNames, ", "))
	}
}

// Start polls RemoveCompleted on the given interval until ctx is cancelled.
func (t *Tracker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.RemoveCompleted(ctx)
		}
	}
}

func (t *Tracker) publishGauges(set pendingSet) {
	counts := map[Kind]int{KindInsert: 0, KindDelete: 0}
	for op := range set {
		counts[op.Kind]++
	}
	for kind, n := range counts {
		metrics.SetPendingOperations(string(kind), n)
	}
}

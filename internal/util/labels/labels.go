package labels

// Standard label keys for buildfleet-managed cloud resources.
const (
	// KeyConfig carries the name prefix of the agent configuration that
	// created the instance. Instances whose value matches no known config
	// are treated as unassociated.
	KeyConfig = "buildfleet.io/config"

	// KeyCloud identifies the managed cloud an instance belongs to.
	KeyCloud = "buildfleet.io/cloud"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "buildfleet.io/managed-by"
)

// ManagedByFleet is the value of KeyManagedBy on every instance this
// process creates.
const ManagedByFleet = "buildfleet"

// Builder accumulates labels for a new instance.
type Builder struct {
	labels map[string]string
}

// NewBuilder creates a builder with the managed-by label pre-set.
func NewBuilder() *Builder {
	return &Builder{
		labels: map[string]string{
			KeyManagedBy: ManagedByFleet,
		},
	}
}

// WithConfig adds the config association label.
func (b *Builder) WithConfig(namePrefix string) *Builder {
	b.labels[KeyConfig] = namePrefix
	return b
}

// WithCloud adds the cloud membership label.
func (b *Builder) WithCloud(cloud string) *Builder {
	b.labels[KeyCloud] = cloud
	return b
}

// Merge adds all labels from the provided map.
func (b *Builder) Merge(extra map[string]string) *Builder {
	for k, v := range extra {
		b.labels[k] = v
	}
	return b
}

// Build returns a copy of the labels map.
func (b *Builder) Build() map[string]string {
	out := make(map[string]string, len(b.labels))
	for k, v := range b.labels {
		out[k] = v
	}
	return out
}

// ManagedSelector returns a label selector matching every instance this
// process manages.
func ManagedSelector() string {
	return KeyManagedBy + "=" + ManagedByFleet
}

// CloudSelector returns a label selector for managed instances of one cloud.
func CloudSelector(cloud string) string {
	return ManagedSelector() + "," + KeyCloud + "=" + cloud
}

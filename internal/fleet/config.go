package fleet

// AgentConfig is an operator-defined template for a pool of build-agent
// instances. Configs are immutable at runtime; the fleet core only reads
// them.
type AgentConfig struct {
	// NamePrefix is the stable key correlating instances to this config
	// via the config label.
	NamePrefix string
	// MaxInstances caps the pool, counted across instances of any status.
	MaxInstances int

	ServerType string
	Image      string
	Location   string
	// Labels are merged into every instance this config creates, in
	// addition to the standard fleet labels.
	Labels map[string]string
}

// InstancesForConfig returns the instances associated with the config by
// label. Instances with a missing or non-matching label are excluded.
func InstancesForConfig(cfg *AgentConfig, instances []*Instance) []*Instance {
	var out []*Instance
	for _, inst := range instances {
		if inst.ConfigPrefix() == cfg.NamePrefix {
			out = append(out, inst)
		}
	}
	return out
}

// CountForConfig returns the number of instances associated with the config.
func CountForConfig(cfg *AgentConfig, instances []*Instance) int {
	n := 0
	for _, inst := range instances {
		if inst.ConfigPrefix() == cfg.NamePrefix {
			n++
		}
	}
	return n
}

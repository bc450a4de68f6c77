package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/buildfleet/buildfleet/internal/fleet"
)

// Duration wraps time.Duration for YAML decoding of values like "1h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root configuration document.
type Config struct {
	// SweepInterval is the reconciliation period.
	SweepInterval Duration `yaml:"sweepInterval"`
	// OperationPollInterval is how often pending operations are polled.
	OperationPollInterval Duration `yaml:"operationPollInterval"`
	// OperationMaxAge bounds how long an operation may stay pending.
	// An explicit "0s" disables expiry.
	OperationMaxAge Duration `yaml:"operationMaxAge"`
	// MetricsAddress is the listen address of the Prometheus endpoint.
	MetricsAddress string `yaml:"metricsAddress"`

	Clouds []CloudConfig `yaml:"clouds"`
}

// CloudConfig describes one managed provider-backed pool of agent configs.
type CloudConfig struct {
	Name string `yaml:"name"`
	// Location is the default placement for the cloud's pools.
	Location string `yaml:"location"`
	// TokenEnv names the environment variable holding the API token.
	// The token itself never appears in the file.
	TokenEnv string `yaml:"tokenEnv"`
	// NodesEndpoint is the coordinator URL returning the names of agents
	// currently attached, as a JSON string array. Instances absent from
	// that set are sweep candidates. Required for serve and sweep.
	NodesEndpoint string `yaml:"nodesEndpoint"`

	Agents []AgentPool `yaml:"agents"`
}

// AgentPool describes one agent configuration within a cloud.
type AgentPool struct {
	NamePrefix   string            `yaml:"namePrefix"`
	MaxInstances int               `yaml:"maxInstances"`
	ServerType   string            `yaml:"serverType"`
	Image        string            `yaml:"image"`
	Location     string            `yaml:"location"`
	Labels       map[string]string `yaml:"labels"`
}

// Defaults returns a Config pre-filled with default values; LoadFile
// unmarshals the file over it so absent fields keep their defaults.
func Defaults() Config {
	return Config{
		SweepInterval:         Duration(time.Hour),
		OperationPollInterval: Duration(30 * time.Second),
		OperationMaxAge:       Duration(2 * time.Hour),
		MetricsAddress:        ":9090",
	}
}

// AgentConfigs converts a cloud's pools into the fleet data model. Pools
// without an explicit location inherit the cloud's.
func (c *CloudConfig) AgentConfigs() []*fleet.AgentConfig {
	configs := make([]*fleet.AgentConfig, 0, len(c.Agents))
	for _, pool := range c.Agents {
		location := pool.Location
		if location == "" {
			location = c.Location
		}
		configs = append(configs, &fleet.AgentConfig{
			NamePrefix:   pool.NamePrefix,
			MaxInstances: pool.MaxInstances,
			ServerType:   pool.ServerType,
			Image:        pool.Image,
			Location:     location,
			Labels:       pool.Labels,
		})
	}
	return configs
}

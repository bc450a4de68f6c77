package config

import (
	"fmt"
)

// Validate checks the configuration for inconsistencies that would only
// surface later as confusing provider errors.
func (c *Config) Validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweepInterval must be positive")
	}
	if c.OperationPollInterval <= 0 {
		return fmt.Errorf("operationPollInterval must be positive")
	}
	if c.OperationMaxAge < 0 {
		return fmt.Errorf("operationMaxAge must not be negative")
	}
	if len(c.Clouds) == 0 {
		return fmt.Errorf("at least one cloud must be configured")
	}

	cloudNames := make(map[string]bool, len(c.Clouds))
	for i := range c.Clouds {
		if err := c.Clouds[i].validate(); err != nil {
			return err
		}
		if cloudNames[c.Clouds[i].Name] {
			return fmt.Errorf("duplicate cloud name: %s", c.Clouds[i].Name)
		}
		cloudNames[c.Clouds[i].Name] = true
	}
	return nil
}

func (c *CloudConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("cloud name must not be empty")
	}
	if c.TokenEnv == "" {
		return fmt.Errorf("cloud %s: tokenEnv must not be empty", c.Name)
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("cloud %s: at least one agent pool must be configured", c.Name)
	}

	prefixes := make(map[string]bool, len(c.Agents))
	for _, pool := range c.Agents {
		if pool.NamePrefix == "" {
			return fmt.Errorf("cloud %s: agent pool namePrefix must not be empty", c.Name)
		}
		if prefixes[pool.NamePrefix] {
			return fmt.Errorf("cloud %s: duplicate agent pool prefix: %s", c.Name, pool.NamePrefix)
		}
		prefixes[pool.NamePrefix] = true

		if pool.MaxInstances <= 0 {
			return fmt.Errorf("cloud %s, pool %s: maxInstances must be positive", c.Name, pool.NamePrefix)
		}
		if pool.ServerType == "" {
			return fmt.Errorf("cloud %s, pool %s: serverType must not be empty", c.Name, pool.NamePrefix)
		}
		if pool.Image == "" {
			return fmt.Errorf("cloud %s, pool %s: image must not be empty", c.Name, pool.NamePrefix)
		}
		if pool.Location == "" && c.Location == "" {
			return fmt.Errorf("cloud %s, pool %s: a location is required on the pool or the cloud", c.Name, pool.NamePrefix)
		}
	}
	return nil
}

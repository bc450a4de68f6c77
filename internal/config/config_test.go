package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Clouds = []CloudConfig{{
		Name:     "ci",
		Location: "fsn1",
		TokenEnv: "HCLOUD_TOKEN",
		Agents: []AgentPool{
			{NamePrefix: "go-large", MaxInstances: 4, ServerType: "cx41", Image: "ci-agent"},
		},
	}}
	return cfg
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, yaml.Unmarshal([]byte(`"1h30m"`), &d))
	assert.Equal(t, 90*time.Minute, d.Std())

	assert.Error(t, yaml.Unmarshal([]byte(`"soon"`), &d))
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no clouds",
			mutate:  func(c *Config) { c.Clouds = nil },
			wantErr: "at least one cloud",
		},
		{
			name: "duplicate cloud name",
			mutate: func(c *Config) {
				c.Clouds = append(c.Clouds, c.Clouds[0])
			},
			wantErr: "duplicate cloud name",
		},
		{
			name:    "missing token env",
			mutate:  func(c *Config) { c.Clouds[0].TokenEnv = "" },
			wantErr: "tokenEnv",
		},
		{
			name: "duplicate pool prefix",
			mutate: func(c *Config) {
				c.Clouds[0].Agents = append(c.Clouds[0].Agents, c.Clouds[0].Agents[0])
			},
			wantErr: "duplicate agent pool prefix",
		},
		{
			name:    "zero max instances",
			mutate:  func(c *Config) { c.Clouds[0].Agents[0].MaxInstances = 0 },
			wantErr: "maxInstances",
		},
		{
			name:    "missing server type",
			mutate:  func(c *Config) { c.Clouds[0].Agents[0].ServerType = "" },
			wantErr: "serverType",
		},
		{
			name:    "missing image",
			mutate:  func(c *Config) { c.Clouds[0].Agents[0].Image = "" },
			wantErr: "image",
		},
		{
			name: "no location anywhere",
			mutate: func(c *Config) {
				c.Clouds[0].Location = ""
				c.Clouds[0].Agents[0].Location = ""
			},
			wantErr: "location",
		},
		{
			name:    "zero sweep interval",
			mutate:  func(c *Config) { c.SweepInterval = 0 },
			wantErr: "sweepInterval",
		},
		{
			name:    "negative operation max age",
			mutate:  func(c *Config) { c.OperationMaxAge = Duration(-time.Minute) },
			wantErr: "operationMaxAge",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAgentConfigs_LocationInheritance(t *testing.T) {
	t.Parallel()

	cc := CloudConfig{
		Name:     "ci",
		Location: "fsn1",
		Agents: []AgentPool{
			{NamePrefix: "go-large", MaxInstances: 4, ServerType: "cx41", Image: "ci-agent"},
			{NamePrefix: "go-small", MaxInstances: 2, ServerType: "cx21", Image: "ci-agent", Location: "nbg1"},
		},
	}

	configs := cc.AgentConfigs()
	require.Len(t, configs, 2)
	assert.Equal(t, "fsn1", configs[0].Location, "pool without location inherits the cloud's")
	assert.Equal(t, "nbg1", configs[1].Location, "explicit pool location wins")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
sweepInterval: "30m"
clouds:
  - name: ci
    location: fsn1
    tokenEnv: HCLOUD_TOKEN
    agents:
      - namePrefix: go-large
        maxInstances: 4
        serverType: cx41
        image: ci-agent
        labels:
          team: platform
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.SweepInterval.Std())
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.OperationPollInterval.Std())
	assert.Equal(t, 2*time.Hour, cfg.OperationMaxAge.Std())
	assert.Equal(t, ":9090", cfg.MetricsAddress)

	require.Len(t, cfg.Clouds, 1)
	require.Len(t, cfg.Clouds[0].Agents, 1)
	assert.Equal(t, "platform", cfg.Clouds[0].Agents[0].Labels["team"])
}

func TestLoadFile_ExplicitZeroMaxAge(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
operationMaxAge: "0s"
clouds:
  - name: ci
    location: fsn1
    tokenEnv: HCLOUD_TOKEN
    agents:
      - namePrefix: go-large
        maxInstances: 4
        serverType: cx41
        image: ci-agent
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.OperationMaxAge.Std(), "explicit 0s disables expiry")
}

func TestLoadFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadFile_MalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "clouds: [}")

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "failed to unmarshal yaml")
}

func TestLoadFile_InvalidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "clouds: []")

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "validation failed")
}

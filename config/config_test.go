package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  addr: ":9090"
decision:
  pollen_low: 15
  pollen_high: 45
location:
  query: "Manheim Atlanta"
simulation:
  enabled: true
history:
  backend: sqlite
  path: reports.db
`

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", testYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 15.0, cfg.Decision.PollenLow)
	assert.Equal(t, 45.0, cfg.Decision.PollenHigh)
	assert.Equal(t, "Manheim Atlanta", cfg.Location.Query)
	assert.True(t, cfg.Simulation.Enabled)
	assert.Equal(t, 85.0, cfg.Simulation.Pollen)
	assert.Equal(t, "sqlite", cfg.History.Backend)
	assert.Equal(t, "reports.db", cfg.History.Path)

	// Untouched sections get their defaults.
	assert.Equal(t, 40, cfg.Fleet.GallonsPerVehicle)
	assert.Equal(t, 10, cfg.AirQuality.TimeoutSeconds)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"server":{"addr":":7070"}}`))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PG_SERVER__ADDR", ":6060")
	cfg, err := Load(writeConfig(t, "config.yaml", testYAML))
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Addr)
}

func TestLoadInvalidThresholds(t *testing.T) {
	bad := "decision:\n  pollen_low: 50\n  pollen_high: 30\n"
	_, err := Load(writeConfig(t, "config.yaml", bad))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 33.66, cfg.Location.Lat)
	assert.Equal(t, -84.53, cfg.Location.Lon)
	assert.Equal(t, "Manheim Atlanta", cfg.Location.Name)
	assert.Equal(t, 85.0, cfg.Simulation.Pollen)
	assert.Equal(t, "jsonl", cfg.History.Backend)
}

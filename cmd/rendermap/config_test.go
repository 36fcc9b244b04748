package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]byte(`
order: topo
cycle_policy: break
format: tree
include: ["src/**/*.jsx"]
exclude: ["**/*.test.jsx"]
workers: 2
log_level: debug
log_format: json
`))
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{
		Order:       "topo",
		CyclePolicy: "break",
		Format:      "tree",
		Include:     []string{"src/**/*.jsx"},
		Exclude:     []string{"**/*.test.jsx"},
		Workers:     2,
		LogLevel:    "debug",
		LogFormat:   "json",
	}, cfg)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, cfg)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"bad order", "order: random\n", "order: must be one of alpha topo"},
		{"bad policy", "cycle_policy: ignore\n", "cycle_policy: must be one of fail alpha break"},
		{"bad format", "format: xml\n", "format: must be one of text json tree"},
		{"empty pattern", "include: [\"\"]\n", "include[0]: empty pattern"},
		{"negative workers", "workers: -1\n", "workers: must be at least 0"},
		{"unknown key", "ordering: topo\n", "field ordering not found"},
		{"not yaml", "order: [\n", "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, path, err := loadConfig("", dir)
	require.NoError(t, err)
	assert.Nil(t, cfg, "missing default config is not an error")
	assert.Empty(t, path)

	writeFile(t, dir, configFileName, "format: json\n")
	cfg, path, err = loadConfig("", dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, filepath.Join(dir, configFileName), path)

	_, _, err = loadConfig(filepath.Join(dir, "absent.yaml"), dir)
	assert.Error(t, err, "explicit config must exist")
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
}

func TestLoadKDLMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Project.Root)
	assert.Equal(t, 5, cfg.Query.MaxAltDepth)
	assert.False(t, cfg.Index.ModuleNameGuess)
	assert.True(t, cfg.Suggest.Enabled)
}

func TestLoadKDL(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
project {
    root "src"
    name "sandbox"
}
index {
    max_file_size "2MB"
    workers 4
    module_name_guess true
}
query {
    max_alt_depth 3
}
suggest {
    enabled false
    max_results 10
    min_similarity 0.8
}
include "**/*.scala" "**/*.java"
exclude {
    "**/generated/**"
}
`)

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src"), cfg.Project.Root)
	assert.Equal(t, "sandbox", cfg.Project.Name)
	assert.Equal(t, int64(2*1024*1024), cfg.Index.MaxFileSize)
	assert.Equal(t, 4, cfg.Index.Workers)
	assert.True(t, cfg.Index.ModuleNameGuess)
	assert.Equal(t, 3, cfg.Query.MaxAltDepth)
	assert.False(t, cfg.Suggest.Enabled)
	assert.Equal(t, 10, cfg.Suggest.MaxResults)
	assert.InDelta(t, 0.8, cfg.Suggest.MinSimilarity, 1e-9)
	assert.Equal(t, []string{"**/*.scala", "**/*.java"}, cfg.Include)
	assert.Equal(t, []string{"**/generated/**"}, cfg.Exclude)
}

func TestLoadKDLMalformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "project {\n")

	_, err := LoadKDL(dir)
	assert.Error(t, err)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max_file_size", func(c *Config) { c.Index.MaxFileSize = 0 }},
		{"oversized max_file_size", func(c *Config) { c.Index.MaxFileSize = 200 * 1024 * 1024 }},
		{"negative workers", func(c *Config) { c.Index.Workers = -1 }},
		{"zero alt depth", func(c *Config) { c.Query.MaxAltDepth = 0 }},
		{"similarity above one", func(c *Config) { c.Suggest.MinSimilarity = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Project.Root = "/tmp"
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"500KB", 500 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"128B", 128},
		{"4096", 4096},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFallsBackToDefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()

	c, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ".homer/homer.db", c.DBPath)
	assert.Contains(t, c.Renderers.Enabled, "agents_md")
}

func TestLoadConfigReadsHomerConfigToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".homer"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".homer", "config.toml"), []byte(`
db_path = "custom.db"

[analysis]
llm_salience_threshold = 0.9
`), 0o644))

	c, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", c.DBPath)
	assert.Equal(t, 0.9, c.Analysis.LLMSalienceThreshold)
}

func TestDbPathJoinsRelativeToRepoRoot(t *testing.T) {
	c, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	got := dbPath("/repo", c)
	assert.Equal(t, filepath.Join("/repo", ".homer", "homer.db"), got)
}

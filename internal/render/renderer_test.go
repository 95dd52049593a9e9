package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/store"
)

func TestWriteEnabledDispatchesKnownRenderersAndSkipsUnknown(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	cfg := config.Default()
	cfg.Renderers.Enabled = []string{"agents_md", "risk_map", "nonexistent"}
	dir := t.TempDir()

	written, errs := WriteEnabled(ctx, s, cfg, dir)
	assert.Empty(t, errs)
	assert.Len(t, written, 2)

	_, err := os.Stat(filepath.Join(dir, "AGENTS.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "homer-risk.json"))
	require.NoError(t, err)
}

func TestWritePreservesBlockOnSecondRun(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	cfg := config.Default()
	dir := t.TempDir()

	r := NewAgentsRenderer()
	_, err := Write(ctx, r, s, cfg, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "AGENTS.md")
	existing, err := os.ReadFile(path)
	require.NoError(t, err)
	withNote := string(existing) + "\n## Notes\n<!-- homer:preserve -->\nDo not touch this service without pairing with @alice.\n<!-- /homer:preserve -->\n"
	require.NoError(t, os.WriteFile(path, []byte(withNote), 0o644))

	_, err = Write(ctx, r, s, cfg, dir)
	require.NoError(t, err)

	merged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(merged), "Do not touch this service without pairing with @alice.")
}

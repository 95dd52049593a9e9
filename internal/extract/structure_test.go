package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/langsupport"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func TestStructureExtractorCreatesFilesModulesAndDeps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example.com/sample\n\nrequire (\n\tgithub.com/stretchr/testify v1.10.0\n)\n")
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "internal/util/util.go", "package util\n")
	writeFile(t, root, "node_modules/left.js", "ignored")

	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	cfg := config.Default()

	ext := NewStructureExtractor(langsupport.NewRegistry())
	stats, err := ext.Extract(ctx, s, root, cfg)
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)

	mainFile, err := s.GetNodeByName(ctx, models.NodeFile, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "go", mainFile.Metadata["language"])

	_, err = s.GetNodeByName(ctx, models.NodeFile, "node_modules/left.js")
	assert.ErrorIs(t, err, store.ErrNotFound)

	rootModule, err := s.GetNodeByName(ctx, models.NodeModule, rootModuleName)
	require.NoError(t, err)
	assert.Equal(t, true, rootModule.Metadata["is_root"])

	utilModule, err := s.GetNodeByName(ctx, models.NodeModule, "internal/util")
	require.NoError(t, err)
	assert.NotZero(t, utilModule.ID)

	dep, err := s.GetNodeByName(ctx, models.NodeExternalDep, "github.com/stretchr/testify")
	require.NoError(t, err)
	assert.NotZero(t, dep.ID)

	edges, err := s.GetEdgesByKind(ctx, models.EdgeDependsOn)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestStructureExtractorUpsertIfChangedSkipsUnchangedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")

	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	cfg := config.Default()
	ext := NewStructureExtractor(langsupport.NewRegistry())

	_, err := ext.Extract(ctx, s, root, cfg)
	require.NoError(t, err)

	stats, err := ext.Extract(ctx, s, root, cfg)
	require.NoError(t, err)
	assert.Zero(t, stats.NodesCreated)
}

package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func TestAgentsRendererInfersBuildCommandsFromManifest(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	_, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "go.mod"})
	require.NoError(t, err)
	_, err = s.UpsertNode(ctx, &models.Node{Kind: models.NodeModule, Name: "."})
	require.NoError(t, err)

	renderer := NewAgentsRenderer()
	content, err := renderer.Render(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Contains(t, content, "go build ./...")
	assert.Contains(t, content, "go test ./...")
	assert.Contains(t, content, "## Module Map")
}

func TestAgentsRendererUsesConfiguredBuildCommands(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	cfg := config.Default()
	cfg.Renderers.BuildCommands = map[string]string{"build": "make build"}

	renderer := NewAgentsRenderer()
	content, err := renderer.Render(ctx, s, cfg)
	require.NoError(t, err)
	assert.Contains(t, content, "make build")
	assert.NotContains(t, content, "go build ./...")
}

func TestAgentsRendererListsCoChangePartners(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	a, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	require.NoError(t, err)
	bFile, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "b.go"})
	require.NoError(t, err)
	_, err = s.UpsertHyperedge(ctx, &models.Hyperedge{
		Kind: models.EdgeCoChanges,
		Members: []models.Member{
			{NodeID: a, Role: models.RoleFile, Position: 0},
			{NodeID: bFile, Role: models.RoleFile, Position: 1},
		},
		Metadata: map[string]any{"arity": 2, "co_occurrences": 4, "support": 0.8},
	})
	require.NoError(t, err)

	renderer := NewAgentsRenderer()
	content, err := renderer.Render(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Contains(t, content, "a.go")
	assert.Contains(t, content, "b.go")
	assert.Contains(t, content, "4 shared commits")
}

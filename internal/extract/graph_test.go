package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/langsupport"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func TestGraphExtractorResolvesSameFileCall(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", `package main

func helper() {}

func main() {
	helper()
}
`)

	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	cfg := config.Default()
	registry := langsupport.NewRegistry()

	_, err := NewStructureExtractor(registry).Extract(ctx, s, root, cfg)
	require.NoError(t, err)

	stats, err := NewGraphExtractor(registry).Extract(ctx, s, root, cfg)
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)

	mainFn, err := s.GetNodeByName(ctx, models.NodeFunction, "main.go::main")
	require.NoError(t, err)

	edges, err := s.GetEdgesInvolving(ctx, mainFn.ID)
	require.NoError(t, err)

	var found bool
	for _, e := range edges {
		if e.Kind == models.EdgeCalls {
			found = true
		}
	}
	assert.True(t, found, "expected a Calls edge from main to helper")
}

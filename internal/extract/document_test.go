package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func TestDocumentExtractorLinksResolveToFileNodes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.go", "package lib\n")
	writeFile(t, root, "docs/guide.md", "# Guide\n\nSee [the lib](../src/lib.go) for details.\n")

	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	_, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "src/lib.go"})
	require.NoError(t, err)

	ext := NewDocumentExtractor()
	stats, err := ext.Extract(ctx, s, root, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)

	doc, err := s.GetNodeByName(ctx, models.NodeDocument, "docs/guide.md")
	require.NoError(t, err)

	edges, err := s.GetEdgesInvolving(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, models.EdgeDocuments, edges[0].Kind)

	hits, err := s.SearchText(ctx, "Guide", models.NodeDocument)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

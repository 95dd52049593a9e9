package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func TestQueryToolReturnsEmptyMessageWhenNoMatch(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	tool := NewQueryTool(s)
	result, err := tool.Execute(ctx, map[string]interface{}{"name": "nonexistent"})
	require.NoError(t, err)
	assert.Contains(t, result, "No entities found")
}

func TestQueryToolRequiresName(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	tool := NewQueryTool(s)
	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	assert.Error(t, err)
}

func TestQueryToolIncludesSalienceWhenPresent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	id, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFunction, Name: "ParseToken"})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: id, Kind: models.AnalysisCompositeSalience, Data: map[string]any{"score": 0.9}})
	require.NoError(t, err)

	tool := NewQueryTool(s)
	result, err := tool.Execute(ctx, map[string]interface{}{"name": "ParseToken", "kind": "function"})
	require.NoError(t, err)
	assert.Contains(t, result, "ParseToken")
	assert.Contains(t, result, "salience")
}

func TestParseNodeKindSynonyms(t *testing.T) {
	kind, ok := parseNodeKind("fn")
	assert.True(t, ok)
	assert.Equal(t, models.NodeFunction, kind)

	_, ok = parseNodeKind("unknown")
	assert.False(t, ok)
}

package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func TestGraphToolOrdersByRequestedMetric(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	low, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "low.go"})
	require.NoError(t, err)
	high, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "high.go"})
	require.NoError(t, err)

	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: low, Kind: models.AnalysisPageRank, Data: map[string]any{"pagerank": 0.1}})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: high, Kind: models.AnalysisPageRank, Data: map[string]any{"pagerank": 0.9}})
	require.NoError(t, err)

	tool := NewGraphTool(s)
	result, err := tool.Execute(ctx, map[string]interface{}{"metric": "pagerank", "top": float64(5)})
	require.NoError(t, err)

	assert.True(t, strings.Index(result, "high.go") < strings.Index(result, "low.go"))
}

func TestGraphToolDefaultsToSalienceMetric(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	id, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: id, Kind: models.AnalysisCompositeSalience, Data: map[string]any{"score": 0.5}})
	require.NoError(t, err)

	tool := NewGraphTool(s)
	result, err := tool.Execute(ctx, map[string]interface{}{})
	require.NoError(t, err)
	assert.Contains(t, result, "\"metric\": \"salience\"")
	assert.Contains(t, result, "a.go")
}

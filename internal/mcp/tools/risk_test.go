package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func TestRiskToolMissingFileReturnsNotFoundMessage(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	tool := NewRiskTool(s)
	result, err := tool.Execute(ctx, map[string]interface{}{"path": "src/missing.go"})
	require.NoError(t, err)
	assert.Contains(t, result, "not found")
}

func TestRiskToolRequiresPath(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	tool := NewRiskTool(s)
	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	assert.Error(t, err)
}

func TestComputeRiskLevelBands(t *testing.T) {
	assert.Equal(t, "low", computeRiskLevel(map[string]any{}))

	assert.Equal(t, "critical", computeRiskLevel(map[string]any{
		"salience":                  map[string]any{"score": 0.8},
		"contributor_concentration": map[string]any{"bus_factor": 1.0},
		"change_frequency":          map[string]any{"total": 25.0},
	}))

	assert.Equal(t, "medium", computeRiskLevel(map[string]any{
		"salience":         map[string]any{"score": 0.5},
		"change_frequency": map[string]any{"total": 5.0},
	}))
}

func TestRiskToolAssemblesKnownAnalyses(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	fileID, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "core.go"})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: fileID, Kind: models.AnalysisChangeFrequency, Data: map[string]any{"total": 25}})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: fileID, Kind: models.AnalysisContributorConcentration, Data: map[string]any{"bus_factor": 1}})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: fileID, Kind: models.AnalysisCompositeSalience, Data: map[string]any{"score": 0.85}})
	require.NoError(t, err)

	tool := NewRiskTool(s)
	result, err := tool.Execute(ctx, map[string]interface{}{"path": "core.go"})
	require.NoError(t, err)
	assert.Contains(t, result, "\"risk_level\": \"critical\"")
}

package render

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func TestRiskMapRendererDetectsKnowledgeSilo(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	now := time.Now()

	fileID, err := s.UpsertNode(ctx, &models.Node{
		Kind:     models.NodeFile,
		Name:     "src/core/engine.go",
		Metadata: map[string]any{"language": "go"},
	})
	require.NoError(t, err)

	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{
		NodeID: fileID,
		Kind:   models.AnalysisCompositeSalience,
		Data: map[string]any{
			"score":          0.85,
			"classification": "ActiveHotspot",
			"components":     map[string]any{"pagerank": 0.9, "betweenness": 0.5, "change_frequency": 0.7},
		},
		ComputedAt: now,
	})
	require.NoError(t, err)

	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{
		NodeID:     fileID,
		Kind:       models.AnalysisContributorConcentration,
		Data:       map[string]any{"bus_factor": 1, "top_contributor_share": 1.0},
		ComputedAt: now,
	})
	require.NoError(t, err)

	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{
		NodeID:     fileID,
		Kind:       models.AnalysisStabilityClassification,
		Data:       map[string]any{"classification": "ActiveCritical"},
		ComputedAt: now,
	})
	require.NoError(t, err)

	renderer := NewRiskMapRenderer()
	out, err := renderer.Render(ctx, s, config.Default())
	require.NoError(t, err)

	var riskMap map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &riskMap))
	assert.Equal(t, "1.0", riskMap["version"])

	areas, ok := riskMap["risk_areas"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, areas, "should have at least one risk area")

	area := areas[0].(map[string]any)
	assert.Equal(t, "src/core/engine.go", area["path"])
	assert.Greater(t, area["risk_score"].(float64), 0.3)

	var reasonTypes []string
	for _, r := range area["reasons"].([]any) {
		reasonTypes = append(reasonTypes, r.(map[string]any)["type"].(string))
	}
	assert.Contains(t, reasonTypes, "knowledge_silo")
}

func TestRiskMapRendererClassifiesLowRiskFileAsSafe(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	_, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "src/utils/helpers.go"})
	require.NoError(t, err)

	riskMap, err := buildRiskMap(ctx, s)
	require.NoError(t, err)
	require.NotEmpty(t, riskMap.SafeAreas, "should classify low-risk file as safe")
	assert.Equal(t, "src/utils/helpers.go", riskMap.SafeAreas[0].Path)
}

func TestClassifyRiskLevel(t *testing.T) {
	assert.Equal(t, "high", classifyRiskLevel(0.9))
	assert.Equal(t, "medium", classifyRiskLevel(0.5))
	assert.Equal(t, "low", classifyRiskLevel(0.2))
	assert.Equal(t, "none", classifyRiskLevel(0.0))
}

func TestHasAssociatedTest(t *testing.T) {
	testFiles := []string{"tests/test_engine.go", "src/main_test.go"}
	assert.True(t, hasAssociatedTest("src/engine.go", testFiles))
	assert.False(t, hasAssociatedTest("src/unknown.go", testFiles))
}

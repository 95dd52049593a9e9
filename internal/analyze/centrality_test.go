package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// seedCallChain builds a -> b -> c, b -> d, each Function belonging to
// its own file, so PageRank/HITS/betweenness all have something to
// differentiate.
func seedCallChain(t *testing.T, ctx context.Context, s store.Store) (a, b, c, d models.NodeID) {
	t.Helper()

	mkFunc := func(name string) models.NodeID {
		fileID, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: name + ".go"})
		require.NoError(t, err)
		fnID, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFunction, Name: name + ".go::" + name})
		require.NoError(t, err)
		_, err = s.UpsertHyperedge(ctx, &models.Hyperedge{
			Kind: models.EdgeBelongsTo,
			Members: []models.Member{
				{NodeID: fnID, Role: models.RoleMember, Position: 0},
				{NodeID: fileID, Role: models.RoleContainer, Position: 1},
			},
		})
		require.NoError(t, err)
		return fnID
	}

	a = mkFunc("a")
	b = mkFunc("b")
	c = mkFunc("c")
	d = mkFunc("d")

	call := func(caller, callee models.NodeID) {
		_, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
			Kind: models.EdgeCalls,
			Members: []models.Member{
				{NodeID: caller, Role: models.RoleCaller, Position: 0},
				{NodeID: callee, Role: models.RoleCallee, Position: 1},
			},
		})
		require.NoError(t, err)
	}
	call(a, b)
	call(b, c)
	call(b, d)

	return a, b, c, d
}

func TestCentralityAnalyzerStoresPageRankHITSAndBetweenness(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	_, b, _, _ := seedCallChain(t, ctx, s)

	analyzer := NewCentralityAnalyzer()
	stats, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)

	pr, err := s.GetAnalysis(ctx, b, models.AnalysisPageRank)
	require.NoError(t, err)
	assert.Greater(t, pr.Data["pagerank"].(float64), 0.0)

	hits, err := s.GetAnalysis(ctx, b, models.AnalysisHITS)
	require.NoError(t, err)
	assert.Greater(t, hits.Data["hub_score"].(float64), 0.0)

	bw, err := s.GetAnalysis(ctx, b, models.AnalysisBetweennessCentrality)
	require.NoError(t, err)
	assert.Greater(t, bw.Data["score"].(float64), 0.0)
}

func TestCentralityAnalyzerComputesCompositeSalience(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	_, b, _, _ := seedCallChain(t, ctx, s)

	analyzer := NewCentralityAnalyzer()
	_, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)

	composite, err := s.GetAnalysis(ctx, b, models.AnalysisCompositeSalience)
	require.NoError(t, err)
	assert.Contains(t, composite.Data, "score")
	assert.Contains(t, composite.Data, "classification")
}

func TestClassifyHITS(t *testing.T) {
	assert.Equal(t, Both, classifyHITS(0.9, 0.9, 0.5, 0.5))
	assert.Equal(t, Hub, classifyHITS(0.9, 0.1, 0.5, 0.5))
	assert.Equal(t, Authority, classifyHITS(0.1, 0.9, 0.5, 0.5))
	assert.Equal(t, Neither, classifyHITS(0.1, 0.1, 0.5, 0.5))
}

func TestSampledBrandesAndExactBothScoreBridgeNode(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	_, b, _, _ := seedCallChain(t, ctx, s)

	proj, err := buildDirectedProjection(ctx, s, models.NodeFunction, models.EdgeCalls, models.RoleCaller, models.RoleCallee)
	require.NoError(t, err)

	exact := betweennessCentrality(proj.graph, proj.graph.Nodes().Len())
	sampled := sampledBrandes(proj.graph, proj.graph.Nodes().Len())

	bGID := int64(b)
	assert.Greater(t, exact[bGID], 0.0)
	assert.Greater(t, sampled[bGID], 0.0)
}

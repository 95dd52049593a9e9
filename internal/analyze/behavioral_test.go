package analyze

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func seedFileWithCommits(t *testing.T, ctx context.Context, s store.Store, path string, authorCommits map[string]int, ageDays map[string]int) models.NodeID {
	t.Helper()

	fileID, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: path})
	require.NoError(t, err)

	for author, n := range authorCommits {
		contributorID, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeContributor, Name: author})
		require.NoError(t, err)

		for i := 0; i < n; i++ {
			sha := author + "-" + path + "-" + time.Now().Add(time.Duration(i)*time.Second).String()
			commitID, err := s.UpsertNode(ctx, &models.Node{
				Kind: models.NodeCommit,
				Name: sha,
				Metadata: map[string]any{
					"timestamp": time.Now().Add(-time.Duration(ageDays[author]) * 24 * time.Hour),
				},
			})
			require.NoError(t, err)

			_, err = s.UpsertHyperedge(ctx, &models.Hyperedge{
				Kind: models.EdgeAuthors,
				Members: []models.Member{
					{NodeID: contributorID, Role: models.RoleContributor, Position: 0},
					{NodeID: commitID, Role: models.RoleCommit, Position: 1},
				},
			})
			require.NoError(t, err)

			_, err = s.UpsertHyperedge(ctx, &models.Hyperedge{
				Kind: models.EdgeModifies,
				Members: []models.Member{
					{NodeID: commitID, Role: models.RoleCommit, Position: 0},
					{NodeID: fileID, Role: models.RoleFile, Position: 1},
				},
			})
			require.NoError(t, err)
		}
	}

	return fileID
}

func TestBehavioralAnalyzerComputesChangeFrequencyAndConcentration(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	hotID := seedFileWithCommits(t, ctx, s, "hot.go", map[string]int{"a@example.com": 8, "b@example.com": 2}, map[string]int{"a@example.com": 5, "b@example.com": 5})
	seedFileWithCommits(t, ctx, s, "cold.go", map[string]int{"c@example.com": 1}, map[string]int{"c@example.com": 400})

	analyzer := NewBehavioralAnalyzer()
	stats, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)
	assert.NotZero(t, stats.ResultsStored)

	freq, err := s.GetAnalysis(ctx, hotID, models.AnalysisChangeFrequency)
	require.NoError(t, err)
	assert.Equal(t, 10, freq.Data["total"])
	assert.Greater(t, freq.Data["percentile"].(float64), 0.0)

	concentration, err := s.GetAnalysis(ctx, hotID, models.AnalysisContributorConcentration)
	require.NoError(t, err)
	assert.Equal(t, 1, concentration.Data["bus_factor"])
	assert.InDelta(t, 0.8, concentration.Data["top_contributor_share"].(float64), 1e-9)
}

func TestBehavioralAnalyzerDefersStabilityUntilPageRankExists(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	fileID := seedFileWithCommits(t, ctx, s, "core.go", map[string]int{"a@example.com": 5}, map[string]int{"a@example.com": 1})

	analyzer := NewBehavioralAnalyzer()
	_, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)

	_, err = s.GetAnalysis(ctx, fileID, models.AnalysisStabilityClassification)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{
		NodeID:     fileID,
		Kind:       models.AnalysisPageRank,
		Data:       map[string]any{"pagerank": 0.9, "rank": 1},
		ComputedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)

	stability, err := s.GetAnalysis(ctx, fileID, models.AnalysisStabilityClassification)
	require.NoError(t, err)
	assert.NotEmpty(t, stability.Data["classification"])
}

func TestContributorConcentrationBusFactor(t *testing.T) {
	busFactor, topShare := contributorConcentration(map[models.NodeID]int{1: 6, 2: 4})
	assert.Equal(t, 1, busFactor)
	assert.InDelta(t, 0.6, topShare, 1e-9)

	busFactor, topShare = contributorConcentration(map[models.NodeID]int{1: 3, 2: 3, 3: 4})
	assert.Equal(t, 2, busFactor)
	assert.InDelta(t, 0.4, topShare, 1e-9)

	busFactor, topShare = contributorConcentration(nil)
	assert.Zero(t, busFactor)
	assert.Zero(t, topShare)
}

func TestClassifyStability(t *testing.T) {
	assert.Equal(t, ActiveCritical, classifyStability(0.9, 0.9, 3))
	assert.Equal(t, ActiveLocalized, classifyStability(0.9, 0.1, 3))
	assert.Equal(t, CriticalSilo, classifyStability(0.1, 0.9, 1))
	assert.Equal(t, FoundationalStable, classifyStability(0.1, 0.9, 5))
	assert.Equal(t, Background, classifyStability(0.1, 0.1, 5))
}

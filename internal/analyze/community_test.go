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

func TestCommunityAnalyzerGroupsConnectedFiles(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	auth, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "auth/login.go"})
	require.NoError(t, err)
	authUtil, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "auth/util.go"})
	require.NoError(t, err)
	billing, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "billing/invoice.go"})
	require.NoError(t, err)

	_, err = s.UpsertHyperedge(ctx, &models.Hyperedge{
		Kind: models.EdgeImports,
		Members: []models.Member{
			{NodeID: auth, Role: models.RoleImporter, Position: 0},
			{NodeID: authUtil, Role: models.RoleImported, Position: 1},
		},
	})
	require.NoError(t, err)

	analyzer := NewCommunityAnalyzer()
	stats, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)

	authResult, err := s.GetAnalysis(ctx, auth, models.AnalysisCommunityAssignment)
	require.NoError(t, err)
	authUtilResult, err := s.GetAnalysis(ctx, authUtil, models.AnalysisCommunityAssignment)
	require.NoError(t, err)
	assert.Equal(t, authResult.Data["community_id"], authUtilResult.Data["community_id"])
	assert.Equal(t, "auth", authResult.Data["community_label"])
	assert.True(t, authResult.Data["directory_aligned"].(bool))

	billingResult, err := s.GetAnalysis(ctx, billing, models.AnalysisCommunityAssignment)
	require.NoError(t, err)
	assert.NotEqual(t, authResult.Data["community_id"], billingResult.Data["community_id"])
}

func TestDirectoryAlignment(t *testing.T) {
	aligned, label := directoryAlignment([]string{"src/a/x.go", "src/a/y.go", "src/a/z.go"}, 1)
	assert.True(t, aligned)
	assert.Equal(t, "src/a", label)

	aligned, label = directoryAlignment([]string{"src/a/x.go", "lib/b/y.go"}, 2)
	assert.False(t, aligned)
	assert.Equal(t, "community-2", label)

	aligned, label = directoryAlignment(nil, 3)
	assert.False(t, aligned)
	assert.Equal(t, "community-3", label)
}

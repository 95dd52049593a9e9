package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/models"
)

// TestMemoryStore_SatisfiesStoreInvariants exercises the same identity
// and invalidation invariants as the SQLite suite, to keep both
// backends behaviorally interchangeable (spec §4.1 "interchangeable
// backend").
func TestMemoryStore_SatisfiesStoreInvariants(t *testing.T) {
	ctx := context.Background()
	var s Store = NewMemoryStore()

	id1, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go", ContentHash: hashOf(1)})
	require.NoError(t, err)
	id2, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go", ContentHash: hashOf(2)})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	n, err := s.GetNodeByName(ctx, models.NodeFile, "a.go")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), *n.ContentHash)

	_, err = s.GetNode(ctx, models.NodeID(9999))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpsertIfChangedAndInvalidate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, changed, err := UpsertIfChanged(ctx, s, &models.Node{Kind: models.NodeFile, Name: "b.go", ContentHash: hashOf(10)})
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: id, Kind: models.AnalysisChangeFrequency, Data: map[string]any{"total": float64(1)}})
	require.NoError(t, err)

	_, changed, err = UpsertIfChanged(ctx, s, &models.Node{Kind: models.NodeFile, Name: "b.go", ContentHash: hashOf(10)})
	require.NoError(t, err)
	assert.False(t, changed)

	_, changed, err = UpsertIfChanged(ctx, s, &models.Node{Kind: models.NodeFile, Name: "b.go", ContentHash: hashOf(20)})
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = s.GetAnalysis(ctx, id, models.AnalysisChangeFrequency)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_HyperedgeDedupAndCoMembers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, _ := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	b, _ := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "b.go"})
	commit, _ := s.UpsertNode(ctx, &models.Node{Kind: models.NodeCommit, Name: "deadbeef"})

	members := []models.Member{
		{NodeID: commit, Role: models.RoleCommit},
		{NodeID: a, Role: models.RoleFile},
	}
	id1, err := s.UpsertHyperedge(ctx, &models.Hyperedge{Kind: models.EdgeModifies, Members: members})
	require.NoError(t, err)
	id2, err := s.UpsertHyperedge(ctx, &models.Hyperedge{Kind: models.EdgeModifies, Members: members})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	_, err = s.UpsertHyperedge(ctx, &models.Hyperedge{
		Kind:    models.EdgeModifies,
		Members: []models.Member{{NodeID: commit, Role: models.RoleCommit}, {NodeID: b, Role: models.RoleFile}},
	})
	require.NoError(t, err)

	co, err := s.GetCoMembers(ctx, commit, models.EdgeModifies)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.NodeID{a, b}, co)
}

func TestMemoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, _ = s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	_, _ = s.UpsertNode(ctx, &models.Node{Kind: models.NodeFunction, Name: "a.go::f"})

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalNodes)
	assert.Equal(t, 1, st.NodesByKind["File"])
	assert.Equal(t, 1, st.NodesByKind["Function"])
}

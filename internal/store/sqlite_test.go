package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func hashOf(v uint64) *uint64 { return &v }

// TestStoreRoundTrip_S1 implements scenario S1 from the testable
// properties: upsert, store an analysis, re-upsert unchanged content
// (no-op), then re-upsert with a new hash (invalidates the analysis).
func TestStoreRoundTrip_S1(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	id, err := s.UpsertNode(ctx, &models.Node{
		Kind:        models.NodeFile,
		Name:        "src/main.rs",
		ContentHash: hashOf(111),
	})
	require.NoError(t, err)

	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{
		NodeID: id,
		Kind:   models.AnalysisChangeFrequency,
		Data:   map[string]any{"total": float64(5)},
	})
	require.NoError(t, err)

	gotID, changed, err := UpsertIfChanged(ctx, s, &models.Node{
		Kind:        models.NodeFile,
		Name:        "src/main.rs",
		ContentHash: hashOf(111),
	})
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.False(t, changed)

	ar, err := s.GetAnalysis(ctx, id, models.AnalysisChangeFrequency)
	require.NoError(t, err)
	assert.Equal(t, float64(5), ar.Data["total"])

	gotID, changed, err = UpsertIfChanged(ctx, s, &models.Node{
		Kind:        models.NodeFile,
		Name:        "src/main.rs",
		ContentHash: hashOf(222),
	})
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.True(t, changed)

	_, err = s.GetAnalysis(ctx, id, models.AnalysisChangeFrequency)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertNode_IdentityInvariant(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	id1, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	require.NoError(t, err)

	id2, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	n, err := s.GetNode(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, models.NodeFile, n.Kind)
	assert.Equal(t, "a.go", n.Name)
}

func TestUpsertHyperedge_Dedup(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	caller, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFunction, Name: "f::a"})
	require.NoError(t, err)
	callee, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFunction, Name: "f::b"})
	require.NoError(t, err)

	members := []models.Member{
		{NodeID: caller, Role: models.RoleCaller, Position: 0},
		{NodeID: callee, Role: models.RoleCallee, Position: 1},
	}

	id1, err := s.UpsertHyperedge(ctx, &models.Hyperedge{Kind: models.EdgeCalls, Members: members, Confidence: 0.5})
	require.NoError(t, err)

	id2, err := s.UpsertHyperedge(ctx, &models.Hyperedge{Kind: models.EdgeCalls, Members: members, Confidence: 0.9})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	edges, err := s.GetEdgesByKind(ctx, models.EdgeCalls)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 0.9, edges[0].Confidence)
	assert.Len(t, edges[0].Members, 2)
}

func TestCheckpoints(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	_, ok, err := s.GetCheckpoint(ctx, "git_last_sha")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetCheckpoint(ctx, "git_last_sha", "deadbeef"))
	v, ok, err := s.GetCheckpoint(ctx, "git_last_sha")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "deadbeef", v)

	require.NoError(t, s.ClearCheckpoints(ctx))
	_, ok, err = s.GetCheckpoint(ctx, "git_last_sha")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidateDependents(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	a, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFunction, Name: "f::a"})
	require.NoError(t, err)
	b, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFunction, Name: "f::b"})
	require.NoError(t, err)

	_, err = s.UpsertHyperedge(ctx, &models.Hyperedge{
		Kind: models.EdgeCalls,
		Members: []models.Member{
			{NodeID: a, Role: models.RoleCaller},
			{NodeID: b, Role: models.RoleCallee},
		},
	})
	require.NoError(t, err)

	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: b, Kind: models.AnalysisPageRank, Data: map[string]any{"score": 0.1}})
	require.NoError(t, err)

	n, err := InvalidateDependents(ctx, s, a)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetAnalysis(ctx, b, models.AnalysisPageRank)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFullTextSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	id, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeDocument, Name: "README.md"})
	require.NoError(t, err)
	require.NoError(t, s.IndexText(ctx, id, "document", "This module implements the hypergraph store engine."))

	hits, err := s.SearchText(ctx, "hypergraph", models.NodeDocument)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].NodeID)
}

func TestSchemaVersionMismatchRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	_, err := s.db.ExecContext(ctx, `UPDATE homer_meta SET value = 'bogus' WHERE key = 'schema_version'`)
	require.NoError(t, err)

	err = s.init()
	assert.Error(t, err)
}

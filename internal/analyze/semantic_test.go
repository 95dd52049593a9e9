package analyze

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

type fakeProvider struct {
	calls     int
	responses []string
	err       error
}

func (p *fakeProvider) Name() string   { return "fake" }
func (p *fakeProvider) Enabled() bool  { return true }
func (p *fakeProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	idx := p.calls
	p.calls++
	if idx < len(p.responses) {
		return p.responses[idx], nil
	}
	return "generated summary", nil
}

func seedCompositeSalientNode(t *testing.T, ctx context.Context, s store.Store, kind models.NodeKind, name string, score float64, docComment string, contentHash *uint64) models.NodeID {
	t.Helper()
	nodeID, err := s.UpsertNode(ctx, &models.Node{
		Kind:        kind,
		Name:        name,
		ContentHash: contentHash,
		Metadata:    map[string]any{"doc_comment": docComment},
	})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{
		NodeID:     nodeID,
		Kind:       models.AnalysisCompositeSalience,
		Data:       map[string]any{"score": score},
		ComputedAt: time.Now(),
	})
	require.NoError(t, err)
	return nodeID
}

func TestSemanticAnalyzerReusesQualityDocComment(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	doc := "Parses the incoming request body and validates every required field."
	nodeID := seedCompositeSalientNode(t, ctx, s, models.NodeFunction, "a.go::Parse", 0.9, doc, nil)

	provider := &fakeProvider{}
	analyzer := NewSemanticAnalyzer(provider)
	stats, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)
	assert.Zero(t, provider.calls)

	result, err := s.GetAnalysis(ctx, nodeID, models.AnalysisSemanticSummary)
	require.NoError(t, err)
	assert.Equal(t, doc, result.Data["summary"])
	assert.Equal(t, string(ProvenanceAlgorithmic), result.Data["provenance"])
}

func TestSemanticAnalyzerCallsProviderWhenNoReusableDoc(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	nodeID := seedCompositeSalientNode(t, ctx, s, models.NodeFunction, "b.go::Handle", 0.9, "", nil)

	provider := &fakeProvider{responses: []string{"handles the request"}}
	analyzer := NewSemanticAnalyzer(provider)
	stats, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)
	assert.Equal(t, 1, provider.calls)

	result, err := s.GetAnalysis(ctx, nodeID, models.AnalysisSemanticSummary)
	require.NoError(t, err)
	assert.Equal(t, "handles the request", result.Data["summary"])
	assert.Equal(t, string(ProvenanceLlmDerived), result.Data["provenance"])
}

func TestSemanticAnalyzerSkipsBelowThreshold(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	nodeID := seedCompositeSalientNode(t, ctx, s, models.NodeFunction, "c.go::Low", 0.1, "", nil)

	provider := &fakeProvider{}
	analyzer := NewSemanticAnalyzer(provider)
	_, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Zero(t, provider.calls)

	_, err = s.GetAnalysis(ctx, nodeID, models.AnalysisSemanticSummary)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSemanticAnalyzerSkipsWithoutProviderWhenNoDocComment(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	nodeID := seedCompositeSalientNode(t, ctx, s, models.NodeFunction, "d.go::Nothing", 0.9, "", nil)

	analyzer := NewSemanticAnalyzer(nil)
	_, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)

	_, err = s.GetAnalysis(ctx, nodeID, models.AnalysisSemanticSummary)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSemanticAnalyzerSkipsReRunOnUnchangedInputHash(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	seedCompositeSalientNode(t, ctx, s, models.NodeFunction, "e.go::Repeat", 0.9, "", nil)

	provider := &fakeProvider{responses: []string{"first summary", "second summary"}}
	analyzer := NewSemanticAnalyzer(provider)

	_, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	_, err = analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "unchanged candidate should not be re-billed")
}

func TestSemanticAnalyzerRecordsProviderErrorsPerNode(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	seedCompositeSalientNode(t, ctx, s, models.NodeFunction, "f.go::Fails", 0.9, "", nil)

	provider := &fakeProvider{err: errors.New("rate limited")}
	analyzer := NewSemanticAnalyzer(provider)
	stats, err := analyzer.Analyze(ctx, s, config.Default())
	require.NoError(t, err)
	assert.Len(t, stats.Errors, 1)
}

func TestIsReusableDocComment(t *testing.T) {
	assert.False(t, isReusableDocComment(""))
	assert.False(t, isReusableDocComment("too short"))
	assert.False(t, isReusableDocComment("TODO: write real documentation for this function later"))
	assert.True(t, isReusableDocComment("Computes the weighted average of every contributor's commit share."))
}

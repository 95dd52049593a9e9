package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/langsupport"
	"github.com/rand/homer-sub001/internal/llm"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func initSampleRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module sample\n\ngo 1.24\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)

	sig := &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Now()}
	_, err = wt.Commit("initial commit", &git.CommitOptions{Author: sig})
	require.NoError(t, err)

	return root
}

func TestRunExecutesAllThreePhases(t *testing.T) {
	root := initSampleRepo(t)
	ctx := context.Background()

	s := store.NewMemoryStore()
	defer s.Close()

	cfg := config.Default()
	cfg.Renderers.Enabled = []string{"agents_md"}

	o := NewOrchestrator(langsupport.NewRegistry(), llm.NewNullProvider(), nil)
	result, err := o.Run(ctx, s, root, cfg, ForceNone)
	require.NoError(t, err)

	assert.Greater(t, result.ExtractNodes, 0)
	assert.GreaterOrEqual(t, result.AnalysisResults, 0)
	assert.Equal(t, 1, result.ArtifactsWritten)
	assert.Empty(t, result.Errors)

	_, err = os.Stat(filepath.Join(root, "AGENTS.md"))
	require.NoError(t, err)
}

func TestRunForceRerunSucceedsAfterCheckpointedRun(t *testing.T) {
	root := initSampleRepo(t)
	ctx := context.Background()

	s := store.NewMemoryStore()
	defer s.Close()

	cfg := config.Default()
	cfg.Renderers.Enabled = nil

	o := NewOrchestrator(langsupport.NewRegistry(), llm.NewNullProvider(), nil)
	_, err := o.Run(ctx, s, root, cfg, ForceNone)
	require.NoError(t, err)

	_, hadCheckpoint, err := s.GetCheckpoint(ctx, "git_last_sha")
	require.NoError(t, err)
	assert.True(t, hadCheckpoint)

	result, err := o.Run(ctx, s, root, cfg, Force)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
}

func TestRunForceSemanticClearsOnlySemanticKind(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	fileID, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: fileID, Kind: models.AnalysisSemanticSummary, Data: map[string]any{}})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: fileID, Kind: models.AnalysisPageRank, Data: map[string]any{"pagerank": 1.0}})
	require.NoError(t, err)

	o := NewOrchestrator(langsupport.NewRegistry(), llm.NewNullProvider(), nil)
	require.NoError(t, o.applyForceMode(ctx, s, ForceSemantic))

	semantic, err := s.GetAnalysesByKind(ctx, models.AnalysisSemanticSummary)
	require.NoError(t, err)
	assert.Empty(t, semantic)

	pagerank, err := s.GetAnalysesByKind(ctx, models.AnalysisPageRank)
	require.NoError(t, err)
	assert.Len(t, pagerank, 1)
}

func TestUnmetRequirementsSkipsAnalyzerMissingDependency(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	missing := unmetRequirements(ctx, s, []string{models.AnalysisCompositeSalience})
	assert.Equal(t, []string{models.AnalysisCompositeSalience}, missing)

	fileID, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	require.NoError(t, err)
	_, err = s.StoreAnalysis(ctx, &models.AnalysisResult{NodeID: fileID, Kind: models.AnalysisCompositeSalience, Data: map[string]any{}})
	require.NoError(t, err)

	missing = unmetRequirements(ctx, s, []string{models.AnalysisCompositeSalience})
	assert.Empty(t, missing)
}

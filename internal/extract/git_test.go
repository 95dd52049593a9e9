package extract

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rand/homer-sub001/internal/config"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

func initRepoWithCommit(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	writeFile(t, root, "README.md", "# Sample\n")

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	sig := &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Now()}
	_, err = wt.Commit("initial commit", &git.CommitOptions{Author: sig})
	require.NoError(t, err)

	return root
}

func TestGitExtractorRecordsCommitAndContributor(t *testing.T) {
	root := initRepoWithCommit(t)

	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	_, err := s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "README.md"})
	require.NoError(t, err)

	ext := NewGitExtractor()
	stats, err := ext.Extract(ctx, s, root, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)

	contributor, err := s.GetNodeByName(ctx, models.NodeContributor, "tester@example.com")
	require.NoError(t, err)
	assert.NotZero(t, contributor.ID)

	edges, err := s.GetEdgesByKind(ctx, models.EdgeAuthors)
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	modifies, err := s.GetEdgesByKind(ctx, models.EdgeModifies)
	require.NoError(t, err)
	assert.Len(t, modifies, 1)

	checkpoint, ok, err := s.GetCheckpoint(ctx, gitLastSHACheckpoint)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, checkpoint)
}

func TestGitExtractorStrengthensCoChangesAcrossCommits(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	sig := &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Now()}

	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "b.go", "package a\n")
	_, err = wt.Add("a.go")
	require.NoError(t, err)
	_, err = wt.Add("b.go")
	require.NoError(t, err)
	_, err = wt.Commit("add a and b together", &git.CommitOptions{Author: sig})
	require.NoError(t, err)

	writeFile(t, root, "a.go", "package a\n\nfunc F() {}\n")
	writeFile(t, root, "b.go", "package a\n\nfunc G() {}\n")
	_, err = wt.Add("a.go")
	require.NoError(t, err)
	_, err = wt.Add("b.go")
	require.NoError(t, err)
	_, err = wt.Commit("touch a and b again", &git.CommitOptions{Author: sig})
	require.NoError(t, err)

	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	_, err = s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "a.go"})
	require.NoError(t, err)
	_, err = s.UpsertNode(ctx, &models.Node{Kind: models.NodeFile, Name: "b.go"})
	require.NoError(t, err)

	ext := NewGitExtractor()
	stats, err := ext.Extract(ctx, s, root, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)

	coChanges, err := s.GetEdgesByKind(ctx, models.EdgeCoChanges)
	require.NoError(t, err)
	require.Len(t, coChanges, 1)
	assert.Equal(t, 2, coChanges[0].Metadata["arity"])
	assert.Equal(t, 2, coChanges[0].Metadata["co_occurrences"])
	assert.InDelta(t, 1.0, coChanges[0].Metadata["support"].(float64), 0.0001)
}

func TestParseIssueRefs_S2(t *testing.T) {
	refs := parseIssueRefs("fixes org/repo#123 and closes #456")
	assert.Equal(t, []int{123, 456}, refs)
}

func TestParseIssueRefs_DeduplicatesAndIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, []int{5}, parseIssueRefs("fixes #5, also fixes #5"))
	assert.Equal(t, []int{10, 20}, parseIssueRefs("FIXES #10, Resolves #20"))
	assert.Empty(t, parseIssueRefs("This PR adds a feature"))
}

func TestExtractIssueNumber(t *testing.T) {
	num, ok := extractIssueNumber("#42")
	assert.True(t, ok)
	assert.Equal(t, 42, num)

	num, ok = extractIssueNumber("  #100")
	assert.True(t, ok)
	assert.Equal(t, 100, num)

	_, ok = extractIssueNumber("#abc")
	assert.False(t, ok)

	_, ok = extractIssueNumber("no hash")
	assert.False(t, ok)
}

func TestGitExtractorRecordsIssueReferences(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	sig := &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Now()}

	writeFile(t, root, "a.go", "package a\n")
	_, err = wt.Add("a.go")
	require.NoError(t, err)
	_, err = wt.Commit("fixes org/repo#123 and closes #456", &git.CommitOptions{Author: sig})
	require.NoError(t, err)

	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	ext := NewGitExtractor()
	stats, err := ext.Extract(ctx, s, root, config.Default())
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)

	issue123, err := s.GetNodeByName(ctx, models.NodeIssue, "123")
	require.NoError(t, err)
	assert.NotZero(t, issue123.ID)

	issue456, err := s.GetNodeByName(ctx, models.NodeIssue, "456")
	require.NoError(t, err)
	assert.NotZero(t, issue456.ID)

	refs, err := s.GetEdgesByKind(ctx, models.EdgeReferences)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestGitExtractorSkipsAlreadySeenCommitsOnRerun(t *testing.T) {
	root := initRepoWithCommit(t)

	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	ext := NewGitExtractor()

	_, err := ext.Extract(ctx, s, root, config.Default())
	require.NoError(t, err)

	stats, err := ext.Extract(ctx, s, root, config.Default())
	require.NoError(t, err)
	assert.Zero(t, stats.EdgesCreated)
}

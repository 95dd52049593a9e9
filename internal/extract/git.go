package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// gitLastSHACheckpoint is the checkpoint key spec §4.4 names literally
// ("writes the new HEAD to git_last_sha"), distinct from the generic
// `<name>_last_hash` key form checkpointKind builds; no other
// extractor currently reads or writes a checkpoint.
const gitLastSHACheckpoint = "git_last_sha"

// GitExtractor reads commit history through a repo handle — no
// external git process — generalizing the teacher's internal/git
// package (which shells out via os/exec) onto go-git/go-git/v5, the
// REDESIGN substitution spec §4.4's "no external process" requirement
// calls for.
type GitExtractor struct{}

func NewGitExtractor() *GitExtractor { return &GitExtractor{} }

func (e *GitExtractor) Name() string { return "git" }

func (e *GitExtractor) Extract(ctx context.Context, s store.Store, repoRoot string, cfg *config.Config) (*ExtractStats, error) {
	start := time.Now()
	stats := &ExtractStats{}

	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.ExtractError(err, "open git repository")
	}

	head, err := repo.Head()
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.ExtractError(err, "resolve HEAD")
	}

	lastSHA, hasCheckpoint, err := s.GetCheckpoint(ctx, gitLastSHACheckpoint)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.ExtractError(err, "read git_last_sha checkpoint")
	}

	commitIter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.ExtractError(err, "walk commit log")
	}

	var commits []*object.Commit
	err = commitIter.ForEach(func(c *object.Commit) error {
		if hasCheckpoint && c.Hash.String() == lastSHA {
			return storerStop
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil && err != storerStop {
		stats.Duration = time.Since(start)
		return stats, homererrors.ExtractError(err, "iterate commits")
	}

	// repo.Log yields newest-first; replay oldest-first so
	// last_modified_commit metadata ends up reflecting the true latest
	// touch once all commits have been applied.
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		if err := ctx.Err(); err != nil {
			break
		}
		if perr := e.applyCommit(ctx, s, c, stats); perr != nil {
			stats.recordError(c.Hash.String(), perr)
		}
	}

	if err := s.SetCheckpoint(ctx, gitLastSHACheckpoint, head.Hash().String()); err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.ExtractError(err, "write git_last_sha checkpoint")
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// storerStop is a sentinel returned from ForEach to stop iteration
// once the checkpointed commit is reached, without treating the stop
// itself as a failure.
var storerStop = fmt.Errorf("stop")

func (e *GitExtractor) applyCommit(ctx context.Context, s store.Store, c *object.Commit, stats *ExtractStats) *homererrors.HomerError {
	commitNode := &models.Node{
		Kind: models.NodeCommit,
		Name: c.Hash.String(),
		Metadata: map[string]any{
			"message":   c.Message,
			"author":    c.Author.Name,
			"timestamp": c.Author.When,
		},
	}
	existing, _ := s.GetNodeByName(ctx, models.NodeCommit, commitNode.Name)
	commitID, err := s.UpsertNode(ctx, commitNode)
	if err != nil {
		return homererrors.ExtractError(err, "upsert commit node")
	}
	stats.recordNode(true, existing != nil)

	contributorKey := c.Author.Email
	if contributorKey == "" {
		contributorKey = c.Author.Name
	}
	contributorNode := &models.Node{Kind: models.NodeContributor, Name: contributorKey}
	existingContributor, _ := s.GetNodeByName(ctx, models.NodeContributor, contributorKey)
	contributorID, err := s.UpsertNode(ctx, contributorNode)
	if err != nil {
		return homererrors.ExtractError(err, "upsert contributor node")
	}
	stats.recordNode(true, existingContributor != nil)

	if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
		Kind: models.EdgeAuthors,
		Members: []models.Member{
			{NodeID: contributorID, Role: models.RoleContributor, Position: 0},
			{NodeID: commitID, Role: models.RoleCommit, Position: 1},
		},
		Confidence: 1.0,
	}); err != nil {
		return homererrors.ExtractError(err, "upsert Authors edge")
	}
	stats.EdgesCreated++

	if err := e.recordIssueRefs(ctx, s, c, commitID, stats); err != nil {
		return err
	}

	stat, err := c.Stats()
	if err != nil {
		return homererrors.ExtractError(err, "compute commit stats")
	}
	var touchedFileIDs []models.NodeID
	for _, fs := range stat {
		path := filepath.ToSlash(fs.Name)
		fileNode, ferr := s.GetNodeByName(ctx, models.NodeFile, path)
		if ferr != nil && ferr != store.ErrNotFound {
			return homererrors.ExtractError(ferr, "lookup touched file").WithContext("path", path)
		}
		var fileID models.NodeID
		if fileNode == nil {
			// The structure extractor owns File node creation; a file
			// touched by history but not yet seen on disk (deleted,
			// or extractors run out of order) is skipped here.
			continue
		}
		fileID = fileNode.ID

		if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
			Kind: models.EdgeModifies,
			Members: []models.Member{
				{NodeID: commitID, Role: models.RoleCommit, Position: 0},
				{NodeID: fileID, Role: models.RoleFile, Position: 1},
			},
			Confidence: 1.0,
		}); err != nil {
			return homererrors.ExtractError(err, "upsert Modifies edge").WithContext("path", path)
		}
		stats.EdgesCreated++

		if fileNode.Metadata == nil {
			fileNode.Metadata = map[string]any{}
		}
		fileNode.Metadata["last_modified_commit"] = c.Hash.String()
		if _, err := s.UpsertNode(ctx, fileNode); err != nil {
			return homererrors.ExtractError(err, "update last_modified_commit").WithContext("path", path)
		}

		touchedFileIDs = append(touchedFileIDs, fileID)
	}

	if err := e.recordCoChanges(ctx, s, touchedFileIDs, stats); err != nil {
		return err
	}

	return nil
}

// recordIssueRefs scans a commit message for local issue cross-
// references ("fixes #123", "closes org/repo#456", …) and upserts an
// Issue node plus a References edge for each one found. This is pure
// commit-message text processing — no GitHub API call — distinct from
// the live PR/issue sync DESIGN.md's dropped-dependencies section
// argues is out of scope.
func (e *GitExtractor) recordIssueRefs(ctx context.Context, s store.Store, c *object.Commit, commitID models.NodeID, stats *ExtractStats) *homererrors.HomerError {
	for _, num := range parseIssueRefs(c.Message) {
		issueName := fmt.Sprintf("%d", num)
		issueNode := &models.Node{Kind: models.NodeIssue, Name: issueName}
		existing, _ := s.GetNodeByName(ctx, models.NodeIssue, issueName)
		issueID, err := s.UpsertNode(ctx, issueNode)
		if err != nil {
			return homererrors.ExtractError(err, "upsert issue node").WithContext("issue", issueName)
		}
		stats.recordNode(true, existing != nil)

		if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
			Kind: models.EdgeReferences,
			Members: []models.Member{
				{NodeID: commitID, Role: models.RoleCommit, Position: 0},
				{NodeID: issueID, Role: models.RoleIssue, Position: 1},
			},
			Confidence: 1.0,
		}); err != nil {
			return homererrors.ExtractError(err, "upsert References edge").WithContext("issue", issueName)
		}
		stats.EdgesCreated++
	}
	return nil
}

// issueRefKeywords are the closing verbs recognized before an issue
// reference, ported from original_source homer-core's
// forge_common::parse_issue_refs.
var issueRefKeywords = []string{
	"close ", "closes ", "closed ",
	"fix ", "fixes ", "fixed ",
	"resolve ", "resolves ", "resolved ",
}

// parseIssueRefs extracts issue numbers referenced by a commit message
// via keywords like "fixes #123" or "closes org/repo#456", in
// insertion order with duplicates removed (spec §8 S2).
func parseIssueRefs(text string) []int {
	lower := strings.ToLower(text)
	type hit struct{ pos, num int }
	var hits []hit

	for _, keyword := range issueRefKeywords {
		offset := 0
		for {
			pos := strings.Index(lower[offset:], keyword)
			if pos < 0 {
				break
			}
			start := offset + pos + len(keyword)
			if num, ok := extractIssueNumber(lower[start:]); ok {
				hits = append(hits, hit{pos: start, num: num})
			}
			offset = start
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var refs []int
	seen := map[int]bool{}
	for _, h := range hits {
		if !seen[h.num] {
			seen[h.num] = true
			refs = append(refs, h.num)
		}
	}
	return refs
}

// extractIssueNumber reads an issue number immediately following a
// "#" in text, accepting both "#123" and "org/repo#123" spellings.
func extractIssueNumber(text string) (int, bool) {
	text = strings.TrimLeft(text, " \t")
	rest, ok := strings.CutPrefix(text, "#")
	if !ok {
		idx := strings.Index(text, "#")
		if idx < 0 {
			return 0, false
		}
		rest = text[idx+1:]
	}

	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	num, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return num, true
}

// recordCoChanges strengthens a CoChanges hyperedge for every pair of
// files touched together by this commit, tracking arity/co_occurrences/
// support the way the original skills-derivation consumer expects
// (original_source homer-core src/render/skills.rs reads exactly these
// three metadata keys off CoChanges edges). Grouping is pairwise rather
// than per-exact-commit-file-set: spec §9's data model names CoChanges
// as a first-class edge kind without specifying grouping granularity,
// and pairwise strengthening composes naturally with the store's
// incremental UpsertIfChanged model, unlike matching exact n-ary sets
// across commits whose file lists rarely repeat verbatim.
func (e *GitExtractor) recordCoChanges(ctx context.Context, s store.Store, touched []models.NodeID, stats *ExtractStats) *homererrors.HomerError {
	if len(touched) < 2 {
		return nil
	}
	for i := 0; i < len(touched); i++ {
		for j := i + 1; j < len(touched); j++ {
			a, b := touched[i], touched[j]
			existing, err := e.findCoChangeEdge(ctx, s, a, b)
			if err != nil {
				return homererrors.ExtractError(err, "lookup existing CoChanges edge")
			}
			coOccurrences := 1
			if existing != nil {
				coOccurrences = asInt(existing.Metadata["co_occurrences"]) + 1
			}

			totalA, err := s.GetCoMembers(ctx, a, models.EdgeModifies)
			if err != nil {
				return homererrors.ExtractError(err, "count commits touching file")
			}
			totalB, err := s.GetCoMembers(ctx, b, models.EdgeModifies)
			if err != nil {
				return homererrors.ExtractError(err, "count commits touching file")
			}
			denom := len(totalA)
			if len(totalB) > denom {
				denom = len(totalB)
			}
			support := 0.0
			if denom > 0 {
				support = float64(coOccurrences) / float64(denom)
			}

			if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
				Kind: models.EdgeCoChanges,
				Members: []models.Member{
					{NodeID: a, Role: models.RoleFile, Position: 0},
					{NodeID: b, Role: models.RoleFile, Position: 1},
				},
				Confidence: support,
				Metadata: map[string]any{
					"arity":          2,
					"co_occurrences": coOccurrences,
					"support":        support,
				},
			}); err != nil {
				return homererrors.ExtractError(err, "upsert CoChanges edge")
			}
			stats.EdgesCreated++
		}
	}
	return nil
}

// findCoChangeEdge returns the existing CoChanges edge between a and b,
// or nil if the pair has never co-changed before.
func (e *GitExtractor) findCoChangeEdge(ctx context.Context, s store.Store, a, b models.NodeID) (*models.Hyperedge, error) {
	edges, err := s.GetEdgesInvolving(ctx, a)
	if err != nil {
		return nil, err
	}
	for _, edge := range edges {
		if edge.Kind != models.EdgeCoChanges {
			continue
		}
		for _, mem := range edge.Members {
			if mem.NodeID == b {
				return edge, nil
			}
		}
	}
	return nil, nil
}

// asInt reads an int out of a metadata value that may have round-tripped
// through JSON (float64) or stayed in-process (int).
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// remoteURL returns the configured "origin" remote URL. Nothing in
// this repository calls it, and extraction does not use it.
func remoteURL(repo *git.Repository) (string, error) {
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", err
	}
	cfg := remote.Config()
	if len(cfg.URLs) == 0 {
		return "", fmt.Errorf("remote %q has no URLs", cfg.Name)
	}
	return strings.TrimSuffix(cfg.URLs[0], ".git"), nil
}

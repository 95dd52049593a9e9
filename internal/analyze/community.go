package analyze

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// directoryAlignmentThreshold is the fraction of a community's
// members that must share a directory prefix for that community to
// be considered directory_aligned (spec §9 Open Question 2, resolved
// here as "longest common directory prefix shared by >= 70% of
// members").
const directoryAlignmentThreshold = 0.7

// CommunityAnalyzer runs Louvain-style modularity maximization
// (gonum.org/v1/gonum/graph/community.Modularize) over the undirected
// projection of Calls union Imports onto Files, then labels each
// resulting community by directory alignment.
type CommunityAnalyzer struct{}

func NewCommunityAnalyzer() *CommunityAnalyzer { return &CommunityAnalyzer{} }

func (a *CommunityAnalyzer) Name() string { return "community" }

func (a *CommunityAnalyzer) Produces() []string {
	return []string{models.AnalysisCommunityAssignment}
}

func (a *CommunityAnalyzer) Requires() []string { return nil }

func (a *CommunityAnalyzer) NeedsRerun(ctx context.Context, s store.Store) (bool, error) {
	return true, nil
}

func (a *CommunityAnalyzer) Analyze(ctx context.Context, s store.Store, cfg *config.Config) (*AnalyzeStats, error) {
	start := time.Now()
	stats := &AnalyzeStats{}
	now := time.Now()

	g, nodeOf, err := buildFileProjection(ctx, s)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.AnalyzeError(err, "build Calls/Imports undirected projection")
	}
	if g.Nodes().Len() == 0 {
		stats.Duration = time.Since(start)
		return stats, nil
	}

	reduced := community.Modularize(g, 1, nil)
	structure := reduced.Structure()

	files, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.AnalyzeError(err, "list file nodes")
	}
	nameByID := make(map[models.NodeID]string, len(files))
	for _, f := range files {
		nameByID[f.ID] = f.Name
	}

	for communityID, members := range structure {
		paths := make([]string, 0, len(members))
		ids := make([]models.NodeID, 0, len(members))
		for _, m := range members {
			nodeID, ok := nodeOf[m.ID()]
			if !ok {
				continue
			}
			ids = append(ids, nodeID)
			paths = append(paths, nameByID[nodeID])
		}

		aligned, label := directoryAlignment(paths, communityID)
		for _, nodeID := range ids {
			storeResult(ctx, s, stats, &models.AnalysisResult{
				NodeID: nodeID,
				Kind:   models.AnalysisCommunityAssignment,
				Data: map[string]any{
					"community_id":      communityID,
					"community_label":   label,
					"directory_aligned": aligned,
				},
				InputHash:  inputHash(nil, map[models.NodeID]float64{nodeID: float64(communityID)}),
				ComputedAt: now,
			})
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// buildFileProjection builds the undirected Calls-union-Imports
// projection on Files: every Calls edge between two Functions/Types is
// projected onto their containing Files via BelongsTo, and every
// resolved Imports edge is added directly.
func buildFileProjection(ctx context.Context, s store.Store) (*simple.WeightedUndirectedGraph, map[int64]models.NodeID, error) {
	g := simple.NewWeightedUndirectedGraph(0, 0)

	files, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		return nil, nil, err
	}
	nodeOf := make(map[int64]models.NodeID, len(files))
	for _, f := range files {
		gid := int64(f.ID)
		g.AddNode(simple.Node(gid))
		nodeOf[gid] = f.ID
	}

	addEdge := func(a, b models.NodeID) {
		if a == b {
			return
		}
		ga, gb := int64(a), int64(b)
		if !g.Has(ga) || !g.Has(gb) {
			return
		}
		if g.HasEdgeBetween(ga, gb) {
			return
		}
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(ga), T: simple.Node(gb), W: 1})
	}

	fileOf, err := fileOfDefinition(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	callEdges, err := s.GetEdgesByKind(ctx, models.EdgeCalls)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range callEdges {
		caller, callee, ok := edgeEndpoints(e, models.RoleCaller, models.RoleCallee)
		if !ok {
			continue
		}
		callerFile, ok1 := fileOf[caller]
		calleeFile, ok2 := fileOf[callee]
		if !ok1 || !ok2 {
			continue
		}
		addEdge(callerFile, calleeFile)
	}

	importEdges, err := s.GetEdgesByKind(ctx, models.EdgeImports)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range importEdges {
		importer, imported, ok := edgeEndpoints(e, models.RoleImporter, models.RoleImported)
		if !ok {
			continue
		}
		addEdge(importer, imported)
	}

	return g, nodeOf, nil
}

// directoryAlignment finds the deepest directory prefix shared by at
// least directoryAlignmentThreshold of paths, labeling the community
// with that prefix; falls back to "community-<id>" when no prefix
// clears the threshold.
func directoryAlignment(paths []string, id int) (aligned bool, label string) {
	fallback := fmt.Sprintf("community-%d", id)
	if len(paths) == 0 {
		return false, fallback
	}

	counts := map[string]int{}
	for _, p := range paths {
		dir := path.Dir(p)
		if dir == "." {
			continue
		}
		segs := strings.Split(dir, "/")
		prefix := ""
		for i, s := range segs {
			if i == 0 {
				prefix = s
			} else {
				prefix = prefix + "/" + s
			}
			counts[prefix]++
		}
	}

	threshold := directoryAlignmentThreshold * float64(len(paths))
	best := ""
	bestDepth := -1
	for prefix, c := range counts {
		if float64(c) < threshold {
			continue
		}
		depth := strings.Count(prefix, "/")
		if depth > bestDepth || (depth == bestDepth && prefix < best) {
			best, bestDepth = prefix, depth
		}
	}
	if best == "" {
		return false, fallback
	}
	return true, best
}

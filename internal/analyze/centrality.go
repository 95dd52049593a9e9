package analyze

import (
	"context"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

const (
	pageRankDamping    = 0.85
	pageRankTolerance  = 1e-8
	hitsMaxIterations  = 100
	hitsConvergence    = 1e-10
	exactBetweennessCap = 1000
	hitsPercentile     = 90
)

// HITSClass is the categorical classification HITS stores alongside
// the raw hub/authority scores.
type HITSClass string

const (
	Hub     HITSClass = "Hub"
	Authority HITSClass = "Authority"
	Both    HITSClass = "Both"
	Neither HITSClass = "Neither"
)

// CentralityAnalyzer builds a directed Calls graph over Functions
// and a directed Imports graph over Files, and computes PageRank,
// HITS and betweenness centrality on each, plus the CompositeSalience
// that blends those scores with the Behavioral analyzer's output
// (spec §4.5's cross-analyzer read). PageRank and exact betweenness
// are gonum's own graph/network implementations; HITS and the
// sampled-Brandes approximation above |V| = 1000 are hand-written —
// no packaged equivalent exists in the example corpus.
type CentralityAnalyzer struct{}

func NewCentralityAnalyzer() *CentralityAnalyzer { return &CentralityAnalyzer{} }

func (a *CentralityAnalyzer) Name() string { return "centrality" }

func (a *CentralityAnalyzer) Produces() []string {
	return []string{
		models.AnalysisPageRank,
		models.AnalysisHITS,
		models.AnalysisBetweennessCentrality,
		models.AnalysisCompositeSalience,
	}
}

func (a *CentralityAnalyzer) Requires() []string { return nil }

func (a *CentralityAnalyzer) NeedsRerun(ctx context.Context, s store.Store) (bool, error) {
	return true, nil
}

func (a *CentralityAnalyzer) Analyze(ctx context.Context, s store.Store, cfg *config.Config) (*AnalyzeStats, error) {
	start := time.Now()
	stats := &AnalyzeStats{}
	now := time.Now()

	callGraph, err := buildDirectedProjection(ctx, s, models.NodeFunction, models.EdgeCalls, models.RoleCaller, models.RoleCallee)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.AnalyzeError(err, "build call graph")
	}
	importGraph, err := buildDirectedProjection(ctx, s, models.NodeFile, models.EdgeImports, models.RoleImporter, models.RoleImported)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.AnalyzeError(err, "build import graph")
	}

	a.analyzeGraph(ctx, s, stats, callGraph, now)
	a.analyzeGraph(ctx, s, stats, importGraph, now)

	if err := a.computeComposite(ctx, s, stats, now); err != nil {
		stats.recordError(0, homererrors.AnalyzeError(err, "compute composite salience"))
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (a *CentralityAnalyzer) analyzeGraph(ctx context.Context, s store.Store, stats *AnalyzeStats, proj *directedProjection, now time.Time) {
	n := proj.graph.Nodes().Len()
	if n == 0 {
		return
	}

	ranks := network.PageRank(proj.graph, pageRankDamping, pageRankTolerance)
	sortedRanks := sortedRankOrder(ranks)

	for gid, score := range ranks {
		nodeID, ok := proj.nodeOf[gid]
		if !ok {
			continue
		}
		storeResult(ctx, s, stats, &models.AnalysisResult{
			NodeID: nodeID,
			Kind:   models.AnalysisPageRank,
			Data: map[string]any{
				"pagerank": score,
				"rank":     sortedRanks[gid],
			},
			InputHash:  inputHash(nil, map[models.NodeID]float64{nodeID: score}),
			ComputedAt: now,
		})
	}

	hubs, authorities := hits(proj.graph)
	hubThreshold := thresholdAt(hubs, hitsPercentile)
	authThreshold := thresholdAt(authorities, hitsPercentile)
	for gid, hub := range hubs {
		nodeID, ok := proj.nodeOf[gid]
		if !ok {
			continue
		}
		auth := authorities[gid]
		storeResult(ctx, s, stats, &models.AnalysisResult{
			NodeID: nodeID,
			Kind:   models.AnalysisHITS,
			Data: map[string]any{
				"hub_score":       hub,
				"authority_score": auth,
				"classification":  string(classifyHITS(hub, auth, hubThreshold, authThreshold)),
			},
			InputHash:  inputHash(nil, map[models.NodeID]float64{nodeID: hub + auth}),
			ComputedAt: now,
		})
	}

	betweenness := betweennessCentrality(proj.graph, n)
	maxBetweenness := maxOf(betweenness)
	for gid, score := range betweenness {
		nodeID, ok := proj.nodeOf[gid]
		if !ok {
			continue
		}
		normalized := 0.0
		if maxBetweenness > 0 {
			normalized = score / maxBetweenness
		}
		storeResult(ctx, s, stats, &models.AnalysisResult{
			NodeID: nodeID,
			Kind:   models.AnalysisBetweennessCentrality,
			Data: map[string]any{
				"score": normalized,
			},
			InputHash:  inputHash(nil, map[models.NodeID]float64{nodeID: normalized}),
			ComputedAt: now,
		})
	}
}

// sortedRankOrder assigns the 1-based rank (descending by score) spec
// §4.5 wants alongside each node's raw PageRank score.
func sortedRankOrder(scores map[int64]float64) map[int64]int {
	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return scores[ids[i]] > scores[ids[j]] })
	out := make(map[int64]int, len(ids))
	for i, id := range ids {
		out[id] = i + 1
	}
	return out
}

// hits computes hub and authority scores by power iteration, L2
// normalizing both vectors after every iteration and terminating when
// the summed absolute change across both drops below
// hitsConvergence, up to hitsMaxIterations.
func hits(g graph.Directed) (hubs, authorities map[int64]float64) {
	nodes := graph.NodesOf(g.Nodes())
	hubs = make(map[int64]float64, len(nodes))
	authorities = make(map[int64]float64, len(nodes))
	for _, n := range nodes {
		hubs[n.ID()] = 1
		authorities[n.ID()] = 1
	}

	for iter := 0; iter < hitsMaxIterations; iter++ {
		newAuth := make(map[int64]float64, len(nodes))
		for _, n := range nodes {
			id := n.ID()
			sum := 0.0
			to := g.To(id)
			for to.Next() {
				sum += hubs[to.Node().ID()]
			}
			newAuth[id] = sum
		}
		normalizeL2(newAuth)

		newHub := make(map[int64]float64, len(nodes))
		for _, n := range nodes {
			id := n.ID()
			sum := 0.0
			from := g.From(id)
			for from.Next() {
				sum += newAuth[from.Node().ID()]
			}
			newHub[id] = sum
		}
		normalizeL2(newHub)

		delta := 0.0
		for _, n := range nodes {
			id := n.ID()
			delta += math.Abs(newHub[id]-hubs[id]) + math.Abs(newAuth[id]-authorities[id])
		}
		hubs, authorities = newHub, newAuth
		if delta < hitsConvergence {
			break
		}
	}
	return hubs, authorities
}

func normalizeL2(v map[int64]float64) {
	sumSquares := 0.0
	for _, x := range v {
		sumSquares += x * x
	}
	if sumSquares == 0 {
		return
	}
	norm := math.Sqrt(sumSquares)
	for k := range v {
		v[k] /= norm
	}
}

func thresholdAt(scores map[int64]float64, percentile float64) float64 {
	vals := make([]float64, 0, len(scores))
	for _, v := range scores {
		vals = append(vals, v)
	}
	sort.Float64s(vals)
	return percentileValue(vals, percentile)
}

func classifyHITS(hub, auth, hubThreshold, authThreshold float64) HITSClass {
	isHub := hub >= hubThreshold
	isAuth := auth >= authThreshold
	switch {
	case isHub && isAuth:
		return Both
	case isHub:
		return Hub
	case isAuth:
		return Authority
	default:
		return Neither
	}
}

// betweennessCentrality runs gonum's exact Brandes implementation for
// graphs of at most exactBetweennessCap nodes, and a hand-written
// sampled Brandes variant above that threshold (spec §4.5: sample
// k = ceil(sqrt(|V|)) sources with fixed stride, scale by |V|/k).
func betweennessCentrality(g graph.Directed, n int) map[int64]float64 {
	if n <= exactBetweennessCap {
		return network.Betweenness(g)
	}
	return sampledBrandes(g, n)
}

func sampledBrandes(g graph.Directed, n int) map[int64]float64 {
	nodes := graph.NodesOf(g.Nodes())
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	k := int(math.Ceil(math.Sqrt(float64(n))))
	if k < 1 {
		k = 1
	}
	stride := n / k
	if stride < 1 {
		stride = 1
	}

	scores := make(map[int64]float64, len(nodes))
	for _, nd := range nodes {
		scores[nd.ID()] = 0
	}

	sampled := 0
	for i := 0; i < len(nodes) && sampled < k; i += stride {
		brandesFrom(g, nodes, nodes[i].ID(), scores)
		sampled++
	}

	scale := float64(n) / float64(sampled)
	for id := range scores {
		scores[id] *= scale
	}
	return scores
}

// brandesFrom runs a single-source shortest-path accumulation pass of
// Brandes' algorithm from source, adding the resulting dependency
// scores into acc. Classic BFS-based formulation for unweighted
// directed graphs.
func brandesFrom(g graph.Directed, nodes []graph.Node, source int64, acc map[int64]float64) {
	dist := make(map[int64]int, len(nodes))
	sigma := make(map[int64]float64, len(nodes))
	preds := make(map[int64][]int64, len(nodes))
	for _, n := range nodes {
		dist[n.ID()] = -1
		sigma[n.ID()] = 0
	}
	dist[source] = 0
	sigma[source] = 1

	var order []int64
	queue := []int64{source}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		to := g.From(v)
		for to.Next() {
			w := to.Node().ID()
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				preds[w] = append(preds[w], v)
			}
		}
	}

	delta := make(map[int64]float64, len(nodes))
	for i := len(order) - 1; i >= 0; i-- {
		w := order[i]
		for _, v := range preds[w] {
			if sigma[w] != 0 {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
		}
		if w != source {
			acc[w] += delta[w]
		}
	}
}

package analyze

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// directedProjection is a gonum directed graph built over one NodeKind
// using one EdgeKind's (fromRole -> toRole) members, plus the reverse
// lookup from gonum's int64 node id back to the store's NodeID (the
// two are numerically identical; the map exists so callers never rely
// on that coincidence directly).
type directedProjection struct {
	graph  *simple.DirectedGraph
	nodeOf map[int64]models.NodeID
}

func buildDirectedProjection(ctx context.Context, s store.Store, kind models.NodeKind, edgeKind models.EdgeKind, fromRole, toRole string) (*directedProjection, error) {
	g := simple.NewDirectedGraph()
	nodes, err := s.FindNodes(ctx, models.NodeFilter{Kind: kind})
	if err != nil {
		return nil, err
	}

	nodeOf := make(map[int64]models.NodeID, len(nodes))
	for _, n := range nodes {
		gid := int64(n.ID)
		g.AddNode(simple.Node(gid))
		nodeOf[gid] = n.ID
	}

	edges, err := s.GetEdgesByKind(ctx, edgeKind)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		from, to, ok := edgeEndpoints(e, fromRole, toRole)
		if !ok {
			continue
		}
		fgid, tgid := int64(from), int64(to)
		if !g.Has(fgid) || !g.Has(tgid) || fgid == tgid {
			continue
		}
		if g.HasEdgeFromTo(fgid, tgid) {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(fgid), T: simple.Node(tgid)})
	}

	return &directedProjection{graph: g, nodeOf: nodeOf}, nil
}

// edgeEndpoints extracts the (from, to) member NodeIDs for the given
// role pair out of a hyperedge, reporting false when either role is
// absent (an unresolved Imports edge has no RoleImported member).
func edgeEndpoints(e *models.Hyperedge, fromRole, toRole string) (from, to models.NodeID, ok bool) {
	var hasFrom, hasTo bool
	for _, m := range e.Members {
		switch m.Role {
		case fromRole:
			from, hasFrom = m.NodeID, true
		case toRole:
			to, hasTo = m.NodeID, true
		}
	}
	return from, to, hasFrom && hasTo
}

// fileOfDefinition resolves every Function/Type node to its containing
// File via BelongsTo (member -> container), so file-level analyses
// (ChangeFrequency, ContributorConcentration, CompositeSalience) can
// be borrowed by the functions/types defined in that file.
func fileOfDefinition(ctx context.Context, s store.Store) (map[models.NodeID]models.NodeID, error) {
	edges, err := s.GetEdgesByKind(ctx, models.EdgeBelongsTo)
	if err != nil {
		return nil, err
	}
	files, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		return nil, err
	}
	isFile := make(map[models.NodeID]bool, len(files))
	for _, f := range files {
		isFile[f.ID] = true
	}
	out := make(map[models.NodeID]models.NodeID, len(edges))
	for _, e := range edges {
		member, container, ok := edgeEndpoints(e, models.RoleMember, models.RoleContainer)
		if !ok || !isFile[container] {
			continue
		}
		out[member] = container
	}
	return out, nil
}

// commitTimestamps reads every Commit node's "timestamp" metadata,
// tolerating both the live time.Time a MemoryStore keeps in-process
// and the RFC3339 string a SQLite-backed store round-trips metadata
// through as JSON.
func commitTimestamps(ctx context.Context, s store.Store) (map[models.NodeID]time.Time, error) {
	commits, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeCommit})
	if err != nil {
		return nil, err
	}
	out := make(map[models.NodeID]time.Time, len(commits))
	for _, c := range commits {
		if ts, ok := parseTimestamp(c.Metadata["timestamp"]); ok {
			out[c.ID] = ts
		}
	}
	return out, nil
}

func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// commitAuthors maps each Commit to its authoring Contributor via
// Authors edges.
func commitAuthors(ctx context.Context, s store.Store) (map[models.NodeID]models.NodeID, error) {
	edges, err := s.GetEdgesByKind(ctx, models.EdgeAuthors)
	if err != nil {
		return nil, err
	}
	out := make(map[models.NodeID]models.NodeID, len(edges))
	for _, e := range edges {
		contributor, commit, ok := edgeEndpoints(e, models.RoleContributor, models.RoleCommit)
		if !ok {
			continue
		}
		out[commit] = contributor
	}
	return out, nil
}

// percentileRank returns v's percentile (0-100) within sortedAsc: the
// fraction of values at or below v.
func percentileRank(sortedAsc []float64, v float64) float64 {
	if len(sortedAsc) == 0 {
		return 0
	}
	count := sort.Search(len(sortedAsc), func(i int) bool { return sortedAsc[i] > v })
	return float64(count) / float64(len(sortedAsc)) * 100
}

// percentileValue returns the value at percentile p (0-100) of
// sortedAsc using linear interpolation between the two nearest ranks.
func percentileValue(sortedAsc []float64, p float64) float64 {
	n := len(sortedAsc)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sortedAsc[0]
	}
	pos := p / 100 * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sortedAsc[n-1]
	}
	frac := pos - float64(lo)
	return sortedAsc[lo] + frac*(sortedAsc[lo+1]-sortedAsc[lo])
}

func maxOf(values map[models.NodeID]float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

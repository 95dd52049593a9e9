package scopegraph

import "sort"

// Merge concatenates several per-file scope graphs into one, remapping
// each graph's node indices by the offset it lands at in the combined
// arena (spec §9: "build per-file, concatenate with an ID-remap
// table").
func Merge(graphs ...*Graph) *Graph {
	merged := &Graph{}
	for _, g := range graphs {
		offset := len(merged.Nodes)
		merged.Nodes = append(merged.Nodes, g.Nodes...)
		for _, e := range g.Edges {
			merged.Edges = append(merged.Edges, Edge{From: e.From + offset, To: e.To + offset, Precedence: e.Precedence})
		}
	}
	return merged
}

// Resolve performs the path-stitching traversal: for every PushSymbol
// node, walk outgoing scope edges in ascending precedence order until
// a PopSymbol node with a matching symbol name is reached. The first
// matching PopSymbol reached wins; ties at the same precedence are
// broken by arena order.
func (g *Graph) Resolve() []ResolvedReference {
	adjacency := make(map[int][]Edge, len(g.Nodes))
	for _, e := range g.Edges {
		adjacency[e.From] = append(adjacency[e.From], e)
	}
	for from := range adjacency {
		edges := adjacency[from]
		sort.SliceStable(edges, func(i, j int) bool { return edges[i].Precedence < edges[j].Precedence })
		adjacency[from] = edges
	}

	var resolved []ResolvedReference
	for i, n := range g.Nodes {
		if n.Kind != KindPushSymbol {
			continue
		}
		if def, defIdx, ok := g.stitchFrom(i, n.Symbol, adjacency); ok {
			resolved = append(resolved, ResolvedReference{
				ReferenceNode:  i,
				DefinitionNode: defIdx,
				Symbol:         n.Symbol,
				Kind:           def.DefKind,
				ReferenceFile:  n.File,
				DefinitionFile: def.File,
				Confidence:     1.0,
			})
		}
	}
	return resolved
}

// stitchFrom performs a breadth-first walk from node i following
// precedence-ordered edges, stopping at the first PopSymbol whose
// symbol matches. No parent pointers are kept; the frontier is plain
// index slices, per the arena-with-indices contract.
func (g *Graph) stitchFrom(start int, symbol string, adjacency map[int][]Edge) (Node, int, bool) {
	visited := map[int]bool{start: true}
	frontier := []int{start}
	for len(frontier) > 0 {
		var next []int
		for _, cur := range frontier {
			for _, e := range adjacency[cur] {
				if visited[e.To] {
					continue
				}
				visited[e.To] = true
				target := g.Nodes[e.To]
				if target.Kind == KindPopSymbol && target.Symbol == symbol {
					return target, e.To, true
				}
				next = append(next, e.To)
			}
		}
		frontier = next
	}
	return Node{}, -1, false
}

// Package scopegraph implements the Scope-Graph Projector (spec §4.3):
// an intermediate structure that drives precise cross-file reference
// resolution, plus the heuristic-tier shortcut spec §4.3 calls for,
// which synthesizes call/import edges directly from per-file
// HeuristicGraphs without constructing a scope graph.
package scopegraph

import "github.com/rand/homer-sub001/internal/langsupport"

// NodeKind enumerates the four scope-graph node kinds spec §4.3 names.
type NodeKind int

const (
	KindRoot NodeKind = iota
	KindScope
	KindPushSymbol
	KindPopSymbol
)

// Node is one arena-indexed scope-graph node. PushSymbol nodes are
// references; PopSymbol nodes are definitions. Scope/Root nodes carry
// no symbol.
type Node struct {
	Kind    NodeKind
	Symbol  string
	Span    langsupport.Span
	DefKind langsupport.SymbolKind // definition kind, set on PopSymbol nodes only
	File    string
}

// Edge is a precedence-ordered scope edge. Path-stitching resolution
// prefers lower-precedence edges first when multiple paths reach a
// PopSymbol of the same name.
type Edge struct {
	From, To   int
	Precedence int
}

// Graph is an arena-with-indices scope graph: no parent pointers, no
// back-references, per spec.md §9's explicit construction note.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// AddNode appends a node and returns its arena index.
func (g *Graph) AddNode(n Node) int {
	g.Nodes = append(g.Nodes, n)
	return len(g.Nodes) - 1
}

// AddEdge appends a precedence-ordered edge between two arena indices.
func (g *Graph) AddEdge(from, to, precedence int) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Precedence: precedence})
}

// ResolvedReference is the output of path-stitching resolution: one
// PushSymbol resolved to the PopSymbol it refers to.
type ResolvedReference struct {
	ReferenceNode  int
	DefinitionNode int
	Symbol         string
	Kind           langsupport.SymbolKind
	ReferenceFile  string
	DefinitionFile string
	Confidence     float64
}

// CallEdge is the call-graph projection's output shape (spec §4.3
// "Call-graph projection").
type CallEdge struct {
	CallerName string
	CallerFile string
	CalleeName string // raw text at the call site, e.g. "greet.Hello"
	// CalleeQualifiedName is the resolved definition's own qualified
	// name within CalleeFile, which extractors need to rebuild its
	// file-scoped node name ("<file>::<qualified_name>").
	CalleeQualifiedName string
	CalleeFile           string
	Span                 langsupport.Span
	Confidence           float64
}

// ImportEdge is the import-graph projection's output shape (spec §4.3
// "Import-graph projection"): one edge per (source_file, target_file)
// pair, carrying every symbol imported across that pair and the
// minimum confidence observed.
type ImportEdge struct {
	SourceFile string
	TargetFile string
	Symbols    []string
	Confidence float64
}

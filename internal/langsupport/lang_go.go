package langsupport

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// goSupport extracts Go definitions/calls/imports. The original
// implementation's go.rs is an unimplemented stub (tier Heuristic,
// empty HeuristicGraph); this builds real extraction in the same
// walk-and-collect shape as the original's fully-implemented Python
// support, since Go source is first-class input for this tool.
type goSupport struct {
	lang *sitter.Language
}

func newGoSupport() *goSupport {
	return &goSupport{lang: sitter.NewLanguage(tree_sitter_go.Language())}
}

func (g *goSupport) ID() string           { return "go" }
func (g *goSupport) Extensions() []string { return []string{"go"} }
func (g *goSupport) Tier() ResolutionTier { return TierHeuristic }

func (g *goSupport) Extract(path string, source []byte) (*HeuristicGraph, error) {
	tree, err := parseSource(g.lang, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	graph := &HeuristicGraph{FilePath: path, Language: "go", Tier: TierHeuristic}
	walkGo(tree.RootNode(), source, "", graph)
	return graph, nil
}

var goCommentKinds = []string{"comment"}

func walkGo(node *sitter.Node, source []byte, scope string, g *HeuristicGraph) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_declaration":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: name, Kind: SymbolFunction,
			Span: nodeSpan(node), Doc: extractLineDocAbove(node, source, goCommentKinds, "//", DocGodoc),
		})
		if body := childByField(node, "body"); body != nil {
			walkGoCalls(body, source, name, g)
		}
		return

	case "method_declaration":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		recv := receiverTypeName(childByField(node, "receiver"), source)
		name := nodeText(nameNode, source)
		qname := name
		if recv != "" {
			qname = recv + "." + name
		}
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: qname, Kind: SymbolFunction,
			Span: nodeSpan(node), Doc: extractLineDocAbove(node, source, goCommentKinds, "//", DocGodoc),
		})
		if body := childByField(node, "body"); body != nil {
			walkGoCalls(body, source, qname, g)
		}
		return

	case "type_declaration":
		for i := uint(0); i < node.ChildCount(); i++ {
			spec := node.Child(i)
			if spec == nil || spec.Kind() != "type_spec" {
				continue
			}
			nameNode := childByField(spec, "name")
			if nameNode == nil {
				continue
			}
			name := nodeText(nameNode, source)
			g.Definitions = append(g.Definitions, Definition{
				Name: name, QualifiedName: name, Kind: SymbolType,
				Span: nodeSpan(node), Doc: extractLineDocAbove(node, source, goCommentKinds, "//", DocGodoc),
			})
		}
		return

	case "import_declaration":
		collectGoImports(node, source, g)
		return

	case "call_expression":
		if fn := childByField(node, "function"); fn != nil {
			g.Calls = append(g.Calls, Call{Caller: scope, CalleeName: nodeText(fn, source), Span: nodeSpan(node), Confidence: 0.7})
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkGo(node.Child(i), source, scope, g)
	}
}

func walkGoCalls(body *sitter.Node, source []byte, caller string, g *HeuristicGraph) {
	var rec func(n *sitter.Node)
	rec = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "call_expression" {
			if fn := childByField(n, "function"); fn != nil {
				g.Calls = append(g.Calls, Call{Caller: caller, CalleeName: nodeText(fn, source), Span: nodeSpan(n), Confidence: 0.7})
			}
		}
		// nested function literals get their own (anonymous) scope
		if n.Kind() == "func_literal" {
			walkGoCalls(childByField(n, "body"), source, caller+".func", g)
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			rec(n.Child(i))
		}
	}
	rec(body)
}

func receiverTypeName(receiver *sitter.Node, source []byte) string {
	if receiver == nil {
		return ""
	}
	for i := uint(0); i < receiver.ChildCount(); i++ {
		p := receiver.Child(i)
		if p == nil || p.Kind() != "parameter_declaration" {
			continue
		}
		t := childByField(p, "type")
		if t == nil {
			continue
		}
		text := nodeText(t, source)
		for len(text) > 0 && text[0] == '*' {
			text = text[1:]
		}
		return text
	}
	return ""
}

func collectGoImports(node *sitter.Node, source []byte, g *HeuristicGraph) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "import_spec" {
			pathNode := childByField(n, "path")
			if pathNode == nil {
				return
			}
			path := trimQuotes(nodeText(pathNode, source))
			alias := ""
			if nameNode := childByField(n, "name"); nameNode != nil {
				alias = nodeText(nameNode, source)
			}
			g.Imports = append(g.Imports, Import{ImportedName: path, Alias: alias, Span: nodeSpan(n), Confidence: 0.95})
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			visit(n.Child(i))
		}
	}
	visit(node)
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

package langsupport

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// pythonSupport extracts Python definitions/calls/imports, grounded
// directly on the original implementation's PythonSupport (the one
// language the distilled source fully implemented rather than
// stubbing) — function_definition/class_definition walking, a
// docstring-as-first-statement doc comment, dotted qualified names.
type pythonSupport struct {
	lang *sitter.Language
}

func newPythonSupport() *pythonSupport {
	return &pythonSupport{lang: sitter.NewLanguage(tree_sitter_python.Language())}
}

func (p *pythonSupport) ID() string           { return "python" }
func (p *pythonSupport) Extensions() []string { return []string{"py", "pyi"} }
func (p *pythonSupport) Tier() ResolutionTier { return TierHeuristic }

func (p *pythonSupport) Extract(path string, source []byte) (*HeuristicGraph, error) {
	tree, err := parseSource(p.lang, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	g := &HeuristicGraph{FilePath: path, Language: "python", Tier: TierHeuristic}
	var context []string
	walkPython(tree.RootNode(), source, &context, g)
	return g, nil
}

func walkPython(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_definition":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		qname := dottedName(*context, name)
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: qname, Kind: SymbolFunction,
			Span: nodeSpan(node), Doc: pythonDocstringFromBody(node, source),
		})
		if body := childByField(node, "body"); body != nil {
			*context = append(*context, name)
			walkPythonCalls(body, source, dottedName(*context, ""), g)
			walkPythonChildren(node, source, context, g)
			*context = (*context)[:len(*context)-1]
			return
		}

	case "class_definition":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		qname := dottedName(*context, name)
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: qname, Kind: SymbolType,
			Span: nodeSpan(node), Doc: pythonDocstringFromBody(node, source),
		})
		*context = append(*context, name)
		walkPythonChildren(node, source, context, g)
		*context = (*context)[:len(*context)-1]
		return

	case "import_statement":
		text := nodeText(node, source)
		names := splitTrim(stripPrefixSpace(text, "import"), ",")
		for _, n := range names {
			g.Imports = append(g.Imports, Import{ImportedName: n, Span: nodeSpan(node), Confidence: 0.9})
		}

	case "import_from_statement":
		g.Imports = append(g.Imports, Import{ImportedName: nodeText(node, source), Span: nodeSpan(node), Confidence: 0.9})

	case "call":
		if fn := childByField(node, "function"); fn != nil {
			scope := "<module>"
			if len(*context) > 0 {
				scope = dottedName((*context)[:len(*context)-1], (*context)[len(*context)-1])
			}
			g.Calls = append(g.Calls, Call{Caller: scope, CalleeName: nodeText(fn, source), Span: nodeSpan(node), Confidence: 0.7})
		}
	}

	walkPythonChildren(node, source, context, g)
}

func walkPythonChildren(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph) {
	for i := uint(0); i < node.ChildCount(); i++ {
		walkPython(node.Child(i), source, context, g)
	}
}

func walkPythonCalls(body *sitter.Node, source []byte, caller string, g *HeuristicGraph) {
	var rec func(n *sitter.Node)
	rec = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "call" {
			if fn := childByField(n, "function"); fn != nil {
				g.Calls = append(g.Calls, Call{Caller: caller, CalleeName: nodeText(fn, source), Span: nodeSpan(n), Confidence: 0.7})
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			rec(n.Child(i))
		}
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		rec(body.Child(i))
	}
}

func pythonDocstringFromBody(node *sitter.Node, source []byte) *DocComment {
	body := childByField(node, "body")
	if body == nil || body.ChildCount() == 0 {
		return nil
	}
	first := body.Child(0)
	if first == nil || first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return nil
	}
	expr := first.Child(0)
	if expr == nil || expr.Kind() != "string" {
		return nil
	}
	return pythonDocstring(nodeText(expr, source))
}

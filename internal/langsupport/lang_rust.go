package langsupport

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// rustSupport extracts Rust definitions/calls/imports. The original
// implementation's rust.rs is an unimplemented stub ("TODO: P1.09");
// this fills it in using the same function_item/struct_item/use_declaration
// walk shape the Python support uses, with "::" qualified names.
type rustSupport struct {
	lang *sitter.Language
}

func newRustSupport() *rustSupport {
	return &rustSupport{lang: sitter.NewLanguage(tree_sitter_rust.Language())}
}

func (r *rustSupport) ID() string           { return "rust" }
func (r *rustSupport) Extensions() []string { return []string{"rs"} }
func (r *rustSupport) Tier() ResolutionTier { return TierHeuristic }

var rustCommentKinds = []string{"line_comment", "block_comment"}

func (r *rustSupport) Extract(path string, source []byte) (*HeuristicGraph, error) {
	tree, err := parseSource(r.lang, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	g := &HeuristicGraph{FilePath: path, Language: "rust", Tier: TierHeuristic}
	var context []string
	walkRust(tree.RootNode(), source, &context, g)
	return g, nil
}

func walkRust(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_item":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		qname := qualifiedName(*context, name, "::")
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: qname, Kind: SymbolFunction,
			Span: nodeSpan(node), Doc: extractLineDocAbove(node, source, rustCommentKinds, "///", DocRustdoc),
		})
		if body := childByField(node, "body"); body != nil {
			walkRustCalls(body, source, qname, g)
		}
		return

	case "struct_item", "enum_item", "trait_item":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		qname := qualifiedName(*context, name, "::")
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: qname, Kind: SymbolType,
			Span: nodeSpan(node), Doc: extractLineDocAbove(node, source, rustCommentKinds, "///", DocRustdoc),
		})
		return

	case "impl_item":
		typeNode := childByField(node, "type")
		implType := ""
		if typeNode != nil {
			implType = nodeText(typeNode, source)
		}
		if body := childByField(node, "body"); body != nil {
			*context = append(*context, implType)
			walkRustChildren(body, source, context, g)
			*context = (*context)[:len(*context)-1]
			return
		}

	case "mod_item":
		nameNode := childByField(node, "name")
		if nameNode != nil {
			name := nodeText(nameNode, source)
			if body := childByField(node, "body"); body != nil {
				*context = append(*context, name)
				walkRustChildren(body, source, context, g)
				*context = (*context)[:len(*context)-1]
				return
			}
		}

	case "use_declaration":
		if arg := childByField(node, "argument"); arg != nil {
			g.Imports = append(g.Imports, Import{ImportedName: nodeText(arg, source), Span: nodeSpan(node), Confidence: 0.9})
		}
	}

	walkRustChildren(node, source, context, g)
}

func walkRustChildren(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph) {
	for i := uint(0); i < node.ChildCount(); i++ {
		walkRust(node.Child(i), source, context, g)
	}
}

func walkRustCalls(body *sitter.Node, source []byte, caller string, g *HeuristicGraph) {
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
		for i := uint(0); i < n.ChildCount(); i++ {
			rec(n.Child(i))
		}
	}
	rec(body)
}

package langsupport

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// javaSupport extracts Java definitions/calls/imports. The original
// implementation's java.rs is an unimplemented stub; this fills it in
// with class/interface/method walking and Javadoc block-comment
// extraction.
type javaSupport struct {
	lang *sitter.Language
}

func newJavaSupport() *javaSupport {
	return &javaSupport{lang: sitter.NewLanguage(tree_sitter_java.Language())}
}

func (j *javaSupport) ID() string           { return "java" }
func (j *javaSupport) Extensions() []string { return []string{"java"} }
func (j *javaSupport) Tier() ResolutionTier { return TierHeuristic }

var javaCommentKinds = []string{"block_comment", "line_comment"}

func (j *javaSupport) Extract(path string, source []byte) (*HeuristicGraph, error) {
	tree, err := parseSource(j.lang, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	g := &HeuristicGraph{FilePath: path, Language: "java", Tier: TierHeuristic}
	var context []string
	walkJava(tree.RootNode(), source, &context, g)
	return g, nil
}

func walkJava(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		qname := qualifiedName(*context, name, ".")
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: qname, Kind: SymbolType,
			Span: nodeSpan(node), Doc: extractBlockDocAbove(node, source, javaCommentKinds, DocJavadoc),
		})
		if body := childByField(node, "body"); body != nil {
			*context = append(*context, name)
			walkJavaChildren(body, source, context, g)
			*context = (*context)[:len(*context)-1]
			return
		}

	case "method_declaration", "constructor_declaration":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		qname := qualifiedName(*context, name, ".")
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: qname, Kind: SymbolFunction,
			Span: nodeSpan(node), Doc: extractBlockDocAbove(node, source, javaCommentKinds, DocJavadoc),
		})
		if body := childByField(node, "body"); body != nil {
			walkJavaCalls(body, source, qname, g)
		}
		return

	case "import_declaration":
		g.Imports = append(g.Imports, Import{ImportedName: importTextFromDecl(node, source), Span: nodeSpan(node), Confidence: 0.9})
		return
	}

	walkJavaChildren(node, source, context, g)
}

func walkJavaChildren(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph) {
	for i := uint(0); i < node.ChildCount(); i++ {
		walkJava(node.Child(i), source, context, g)
	}
}

func walkJavaCalls(body *sitter.Node, source []byte, caller string, g *HeuristicGraph) {
	var rec func(n *sitter.Node)
	rec = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "method_invocation" {
			if name := childByField(n, "name"); name != nil {
				g.Calls = append(g.Calls, Call{Caller: caller, CalleeName: nodeText(name, source), Span: nodeSpan(n), Confidence: 0.7})
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			rec(n.Child(i))
		}
	}
	rec(body)
}

func importTextFromDecl(node *sitter.Node, source []byte) string {
	text := nodeText(node, source)
	return stripPrefixSpace(trimSemicolon(text), "import")
}

func trimSemicolon(s string) string {
	if len(s) > 0 && s[len(s)-1] == ';' {
		return s[:len(s)-1]
	}
	return s
}

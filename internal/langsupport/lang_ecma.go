package langsupport

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ecmaWalk is the shared JavaScript/TypeScript extraction walker,
// grounded on the original implementation's ecma_scope.rs ("shared ES
// module scope graph construction for TypeScript and JavaScript").
// That file builds a full scope graph during the walk; this flattens
// the same node-kind dispatch into HeuristicGraph definitions/calls/
// imports, since cross-file scope resolution is internal/scopegraph's
// job here, not the per-file extractor's.
func ecmaWalk(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph, jsdoc bool) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		ecmaDef(node, source, context, g, SymbolFunction, jsdoc)
		return

	case "class_declaration":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		qname := dottedName(*context, name)
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: qname, Kind: SymbolType,
			Span: nodeSpan(node), Doc: ecmaDoc(node, source, jsdoc),
		})
		if body := childByField(node, "body"); body != nil {
			*context = append(*context, name)
			ecmaWalkChildren(body, source, context, g, jsdoc)
			*context = (*context)[:len(*context)-1]
			return
		}

	case "method_definition":
		ecmaDef(node, source, context, g, SymbolFunction, jsdoc)
		return

	case "interface_declaration", "type_alias_declaration", "enum_declaration":
		nameNode := childByField(node, "name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, source)
		g.Definitions = append(g.Definitions, Definition{
			Name: name, QualifiedName: dottedName(*context, name), Kind: SymbolType,
			Span: nodeSpan(node), Doc: ecmaDoc(node, source, jsdoc),
		})
		return

	case "import_statement":
		ecmaImport(node, source, g)
		return

	case "call_expression":
		if fn := childByField(node, "function"); fn != nil {
			scope := "<module>"
			if len(*context) > 0 {
				scope = joinDots(*context)
			}
			g.Calls = append(g.Calls, Call{Caller: scope, CalleeName: nodeText(fn, source), Span: nodeSpan(node), Confidence: 0.7})
		}
	}

	ecmaWalkChildren(node, source, context, g, jsdoc)
}

func ecmaDef(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph, kind SymbolKind, jsdoc bool) {
	nameNode := childByField(node, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, source)
	qname := dottedName(*context, name)
	g.Definitions = append(g.Definitions, Definition{
		Name: name, QualifiedName: qname, Kind: kind,
		Span: nodeSpan(node), Doc: ecmaDoc(node, source, jsdoc),
	})
	if body := childByField(node, "body"); body != nil {
		*context = append(*context, name)
		ecmaWalkCalls(body, source, joinDots(*context), g)
		ecmaWalkChildren(body, source, context, g, jsdoc)
		*context = (*context)[:len(*context)-1]
	}
}

func ecmaDoc(node *sitter.Node, source []byte, jsdoc bool) *DocComment {
	if !jsdoc {
		return nil
	}
	return extractBlockDocAbove(node, source, []string{"comment"}, DocJsdoc)
}

func ecmaWalkChildren(node *sitter.Node, source []byte, context *[]string, g *HeuristicGraph, jsdoc bool) {
	for i := uint(0); i < node.ChildCount(); i++ {
		ecmaWalk(node.Child(i), source, context, g, jsdoc)
	}
}

func ecmaWalkCalls(body *sitter.Node, source []byte, caller string, g *HeuristicGraph) {
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

func ecmaImport(node *sitter.Node, source []byte, g *HeuristicGraph) {
	clause := findChildByKind(node, "import_clause")
	sourceNode := findChildByKind(node, "string")
	importPath := ""
	if sourceNode != nil {
		importPath = trimQuotes(nodeText(sourceNode, source))
	}
	if clause == nil {
		// side-effect import: import './module'
		g.Imports = append(g.Imports, Import{ImportedName: importPath, Span: nodeSpan(node), Confidence: 0.9})
		return
	}
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			g.Imports = append(g.Imports, Import{ImportedName: importPath, Alias: nodeText(child, source), Span: nodeSpan(node), Confidence: 0.9})
		case "namespace_import":
			alias := ""
			if id := findChildByKind(child, "identifier"); id != nil {
				alias = nodeText(id, source)
			}
			g.Imports = append(g.Imports, Import{ImportedName: importPath, Alias: alias, Span: nodeSpan(node), Confidence: 0.9})
		case "named_imports":
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				name := ""
				if n := childByField(spec, "name"); n != nil {
					name = nodeText(n, source)
				}
				alias := name
				if a := childByField(spec, "alias"); a != nil {
					alias = nodeText(a, source)
				}
				g.Imports = append(g.Imports, Import{ImportedName: importPath + "::" + name, Alias: alias, Span: nodeSpan(node), Confidence: 0.9})
			}
		}
	}
}

func joinDots(context []string) string {
	out := context[0]
	for _, c := range context[1:] {
		out += "." + c
	}
	return out
}

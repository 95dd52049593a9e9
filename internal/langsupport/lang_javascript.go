package langsupport

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

type javaScriptSupport struct {
	lang *sitter.Language
}

func newJavaScriptSupport() *javaScriptSupport {
	return &javaScriptSupport{lang: sitter.NewLanguage(tree_sitter_javascript.Language())}
}

func (j *javaScriptSupport) ID() string           { return "javascript" }
func (j *javaScriptSupport) Extensions() []string { return []string{"js", "jsx", "mjs", "cjs"} }
func (j *javaScriptSupport) Tier() ResolutionTier { return TierHeuristic }

func (j *javaScriptSupport) Extract(path string, source []byte) (*HeuristicGraph, error) {
	tree, err := parseSource(j.lang, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	g := &HeuristicGraph{FilePath: path, Language: "javascript", Tier: TierHeuristic}
	var context []string
	ecmaWalk(tree.RootNode(), source, &context, g, true)
	return g, nil
}

package langsupport

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

type typeScriptSupport struct {
	lang *sitter.Language
}

func newTypeScriptSupport() *typeScriptSupport {
	return &typeScriptSupport{lang: sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())}
}

func (t *typeScriptSupport) ID() string           { return "typescript" }
func (t *typeScriptSupport) Extensions() []string { return []string{"ts", "tsx"} }
func (t *typeScriptSupport) Tier() ResolutionTier { return TierHeuristic }

func (t *typeScriptSupport) Extract(path string, source []byte) (*HeuristicGraph, error) {
	tree, err := parseSource(t.lang, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	g := &HeuristicGraph{FilePath: path, Language: "typescript", Tier: TierHeuristic}
	var context []string
	ecmaWalk(tree.RootNode(), source, &context, g, true)
	return g, nil
}

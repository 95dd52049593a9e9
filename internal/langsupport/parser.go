package langsupport

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// parseSource parses source with the given tree-sitter grammar and
// returns the resulting tree. Callers must Close() the tree, the same
// CGO-ownership discipline the teacher's LanguageParser documents.
func parseSource(language *sitter.Language, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("langsupport: failed to create tree-sitter parser")
	}
	defer parser.Close()

	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("langsupport: set language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("langsupport: failed to parse source")
	}
	return tree, nil
}

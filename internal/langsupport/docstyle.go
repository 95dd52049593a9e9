package langsupport

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractLineDocAbove walks backwards through line-comment siblings
// immediately preceding node, collecting contiguous lines that start
// with prefix (e.g. "///" for Rust, "//" for Go). Grounded on the
// original implementation's extract_doc_comment_above.
func extractLineDocAbove(node *sitter.Node, source []byte, commentKinds []string, prefix string, style DocStyle) *DocComment {
	var lines []string
	current := node
	for {
		prev := current.PrevSibling()
		if prev == nil {
			break
		}
		if !isOneOf(prev.Kind(), commentKinds) {
			break
		}
		text := nodeText(prev, source)
		if !strings.HasPrefix(strings.TrimSpace(text), prefix) {
			break
		}
		stripped := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), prefix))
		lines = append(lines, stripped)
		current = prev
	}
	if len(lines) == 0 {
		return nil
	}
	// lines were collected bottom-to-top
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	text := strings.Join(lines, "\n")
	return &DocComment{Text: text, ContentHash: hashString(text), Style: style}
}

// extractBlockDocAbove looks for a /** ... */ block comment directly
// preceding node and strips its decoration, grounded on the original
// implementation's extract_block_doc_comment.
func extractBlockDocAbove(node *sitter.Node, source []byte, commentKinds []string, style DocStyle) *DocComment {
	prev := node.PrevSibling()
	if prev == nil || !isOneOf(prev.Kind(), commentKinds) {
		return nil
	}
	text := nodeText(prev, source)
	if !strings.HasPrefix(text, "/**") {
		return nil
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	var cleaned []string
	for _, line := range strings.Split(inner, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "*")
		trimmed = strings.TrimPrefix(trimmed, " ")
		cleaned = append(cleaned, trimmed)
	}
	result := strings.TrimSpace(strings.Join(cleaned, "\n"))
	if result == "" {
		return nil
	}
	return &DocComment{Text: result, ContentHash: hashString(result), Style: style}
}

func isOneOf(kind string, kinds []string) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// pythonDocstring strips a Python triple-quoted string and classifies
// its style by the markers the original implementation checks for.
func pythonDocstring(raw string) *DocComment {
	content := raw
	switch {
	case strings.HasPrefix(content, `"""`) && strings.HasSuffix(content, `"""`) && len(content) >= 6:
		content = content[3 : len(content)-3]
	case strings.HasPrefix(content, "'''") && strings.HasSuffix(content, "'''") && len(content) >= 6:
		content = content[3 : len(content)-3]
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var style DocStyle
	switch {
	case strings.Contains(content, ":param ") || strings.Contains(content, ":type "):
		style = DocSphinx
	case strings.Contains(content, "Args:") || strings.Contains(content, "Returns:"):
		style = DocGoogle
	case strings.Contains(content, "Parameters\n") || strings.Contains(content, "----------"):
		style = DocNumpy
	default:
		style = DocOther
	}
	return &DocComment{Text: content, ContentHash: hashString(content), Style: style}
}

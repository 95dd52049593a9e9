package langsupport

import (
	"hash/fnv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText returns the source slice a tree-sitter node spans,
// grounded on the teacher's treesitter.getNodeText helper.
func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func nodeSpan(n *sitter.Node) Span {
	return Span{StartLine: int(n.StartPosition().Row) + 1, EndLine: int(n.EndPosition().Row) + 1}
}

func childByField(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

func findChildByKind(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func dottedName(context []string, name string) string {
	if len(context) == 0 {
		return name
	}
	return strings.Join(context, ".") + "." + name
}

func qualifiedName(context []string, name, sep string) string {
	if len(context) == 0 {
		return name
	}
	return strings.Join(context, sep) + sep + name
}

func stripPrefixSpace(text, prefix string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, prefix)
	return strings.TrimSpace(trimmed)
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// hashString is the FNV-1a 64-bit hash used for doc-comment content
// hashes, matching spec.md's choice of "a fast 64-bit FNV-1a" for
// content hashing elsewhere in the store.
func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

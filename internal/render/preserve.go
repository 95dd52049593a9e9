package render

import "strings"

const (
	preserveOpen  = "<!-- homer:preserve -->"
	preserveClose = "<!-- /homer:preserve -->"
)

// preservedBlock is a `<!-- homer:preserve -->` block lifted out of an
// existing rendered file, tagged with the `## ` section heading it
// last appeared under (spec §4.6's preservation protocol).
type preservedBlock struct {
	content      string
	afterSection string
	hasSection   bool
}

// mergeWithPreserve re-inserts existing's preserve blocks into
// newContent, each directly after the matching `## ` section heading,
// or appended at the end if that section no longer exists. Ported
// line-for-line from original_source/homer-core/src/render/traits.rs
// (merge_with_preserve/extract_preserved_blocks).
func mergeWithPreserve(existing, newContent string) string {
	blocks := extractPreservedBlocks(existing)
	if len(blocks) == 0 {
		return newContent
	}

	result := newContent
	for _, block := range blocks {
		if block.hasSection {
			if pos := strings.Index(result, block.afterSection); pos >= 0 {
				if newline := strings.IndexByte(result[pos:], '\n'); newline >= 0 {
					insertPos := pos + newline + 1
					result = result[:insertPos] + block.content + result[insertPos:]
					continue
				}
			}
			result += "\n" + block.content
			continue
		}
		result += "\n" + block.content
	}
	return result
}

func extractPreservedBlocks(content string) []preservedBlock {
	var blocks []preservedBlock
	var current *strings.Builder
	var lastSection string
	var haveSection bool

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == preserveOpen:
			current = &strings.Builder{}
			current.WriteString(line)
			current.WriteByte('\n')
		case trimmed == preserveClose:
			if current != nil {
				current.WriteString(line)
				current.WriteByte('\n')
				blocks = append(blocks, preservedBlock{
					content:      current.String(),
					afterSection: lastSection,
					hasSection:   haveSection,
				})
				current = nil
			}
		case current != nil:
			current.WriteString(line)
			current.WriteByte('\n')
		}

		if strings.HasPrefix(line, "## ") {
			lastSection = line
			haveSection = true
		}
	}
	return blocks
}

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeWithPreservePreservesHumanSection(t *testing.T) {
	existing := "# AGENTS.md\n\n## Build\nauto content\n\n## Custom\n<!-- homer:preserve -->\nHuman section\n<!-- /homer:preserve -->\n"
	newContent := "# AGENTS.md\n\n## Build\nnew auto content\n\n## Custom\nnew auto\n"

	merged := mergeWithPreserve(existing, newContent)
	assert.Contains(t, merged, "Human section")
	assert.Contains(t, merged, "new auto content")
}

func TestMergeWithPreserveNoBlocksReturnsNewContent(t *testing.T) {
	existing := "# Old\nold content"
	newContent := "# New\nnew content"
	assert.Equal(t, newContent, mergeWithPreserve(existing, newContent))
}

func TestMergeWithPreserveAppendsWhenSectionVanished(t *testing.T) {
	existing := "# AGENTS.md\n\n## Gone\n<!-- homer:preserve -->\nStill here\n<!-- /homer:preserve -->\n"
	newContent := "# AGENTS.md\n\n## Build\nauto content\n"

	merged := mergeWithPreserve(existing, newContent)
	assert.Contains(t, merged, "Still here")
	assert.True(t, len(merged) > len(newContent))
}

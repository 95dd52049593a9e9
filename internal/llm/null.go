package llm

import (
	"context"
	"fmt"
)

// NullProvider is used when no LLM key is configured (spec §4.5
// "Semantic analyzer (optional)"): Enabled reports false so callers
// skip straight to the algorithmic summary path.
type NullProvider struct{}

func NewNullProvider() *NullProvider { return &NullProvider{} }

func (*NullProvider) Name() string { return "none" }

func (*NullProvider) Enabled() bool { return false }

func (*NullProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", fmt.Errorf("llm: no provider configured")
}

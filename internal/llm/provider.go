// Package llm provides the provider abstraction the Semantic analyzer
// uses to generate natural-language summaries, modeled on the
// teacher's own internal/llm package naming and on kraklabs-cie's
// pkg/llm provider-abstraction shape (Provider interface, Generate,
// a ProviderConfig constructor switch), narrowed to the single
// Complete call the Semantic analyzer actually needs.
package llm

import "context"

// Provider is the capability a Semantic-analyzer-facing LLM backend
// implements.
type Provider interface {
	// Complete returns a single completion for the given system/user
	// prompt pair.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name identifies the provider for SemanticSummary provenance.
	Name() string

	// Enabled reports whether this provider is actually configured to
	// make calls (an API key is present, etc). A disabled provider's
	// Complete always returns an error; callers check Enabled first
	// to fall back to the algorithmic summary path instead.
	Enabled() bool
}

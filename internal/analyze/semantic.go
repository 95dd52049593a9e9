package analyze

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/llm"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// Provenance tags how a SemanticSummary was produced.
type Provenance string

const (
	ProvenanceAlgorithmic Provenance = "Algorithmic"
	ProvenanceLlmDerived  Provenance = "LlmDerived"
	// ProvenanceComposite is defined for the SemanticSummary shape
	// spec §4.5 names, but the current analyzer never constructs it —
	// reserved for a future summarizer that merges multiple sources
	// (spec §9 Open Question 3).
	ProvenanceComposite Provenance = "Composite"
)

// Confidence is the LlmDerived provenance's self-reported confidence.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

const semanticTemplateVersion = "v1"

var placeholderDocMarkers = []string{"todo", "fixme", "xxx", "hack", "placeholder"}

// SemanticAnalyzer picks the top salient file/function/type/module
// nodes and attaches a natural-language SemanticSummary to each,
// reusing an existing high-quality doc comment where one exists and
// otherwise calling the configured llm.Provider under a bounded
// semaphore and a cost budget (spec §4.5 "Semantic analyzer
// (optional)"). With a NullProvider, every candidate without a
// reusable doc comment is simply skipped.
type SemanticAnalyzer struct {
	provider llm.Provider
}

func NewSemanticAnalyzer(provider llm.Provider) *SemanticAnalyzer {
	return &SemanticAnalyzer{provider: provider}
}

func (a *SemanticAnalyzer) Name() string { return "semantic" }

func (a *SemanticAnalyzer) Produces() []string { return []string{models.AnalysisSemanticSummary} }

func (a *SemanticAnalyzer) Requires() []string { return []string{models.AnalysisCompositeSalience} }

func (a *SemanticAnalyzer) NeedsRerun(ctx context.Context, s store.Store) (bool, error) {
	results, err := s.GetAnalysesByKind(ctx, models.AnalysisCompositeSalience)
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}

type semanticCandidate struct {
	node  *models.Node
	score float64
}

func (a *SemanticAnalyzer) Analyze(ctx context.Context, s store.Store, cfg *config.Config) (*AnalyzeStats, error) {
	start := time.Now()
	stats := &AnalyzeStats{}
	now := time.Now()

	candidates, err := a.selectCandidates(ctx, s, cfg)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.AnalyzeError(err, "select semantic candidates")
	}

	sem := semaphore.NewWeighted(int64(maxInt(cfg.LLM.MaxConcurrent, 1)))
	spent := 0.0
	const costPerCall = 0.0005

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			break
		}

		incoming, outgoing, err := refCounts(ctx, s, cand.node.ID)
		if err != nil {
			stats.recordError(cand.node.ID, homererrors.AnalyzeError(err, "count references"))
			continue
		}

		docComment, _ := cand.node.Metadata["doc_comment"].(string)
		if isReusableDocComment(docComment) {
			storeResult(ctx, s, stats, &models.AnalysisResult{
				NodeID: cand.node.ID,
				Kind:   models.AnalysisSemanticSummary,
				Data: map[string]any{
					"summary":        docComment,
					"provenance":     string(ProvenanceAlgorithmic),
					"evidence_nodes": []models.NodeID{cand.node.ID},
				},
				InputHash:  inputHash(cand.node.ContentHash, nil),
				ComputedAt: now,
			})
			continue
		}

		if a.provider == nil || !a.provider.Enabled() {
			continue
		}

		hash := semanticInputHash(cfg.LLM.Model, cand.node.ContentHash, docComment, incoming, outgoing)
		if existing, err := s.GetAnalysis(ctx, cand.node.ID, models.AnalysisSemanticSummary); err == nil && existing.InputHash == hash {
			continue
		}

		if cfg.LLM.CostBudget > 0 && spent+costPerCall > cfg.LLM.CostBudget {
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			continue
		}
		summary, err := a.provider.Complete(ctx, semanticSystemPrompt, semanticUserPrompt(cand.node))
		sem.Release(1)
		spent += costPerCall
		if err != nil {
			stats.recordError(cand.node.ID, homererrors.LlmError(err, "generate semantic summary"))
			continue
		}

		storeResult(ctx, s, stats, &models.AnalysisResult{
			NodeID: cand.node.ID,
			Kind:   models.AnalysisSemanticSummary,
			Data: map[string]any{
				"summary":    summary,
				"provenance": string(ProvenanceLlmDerived),
				"model_id":   cfg.LLM.Model,
				"template_version": semanticTemplateVersion,
				"input_hash": hash,
				"evidence_nodes": []models.NodeID{cand.node.ID},
				"confidence": string(confidenceFor(incoming, outgoing)),
			},
			InputHash:  hash,
			ComputedAt: now,
		})
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// selectCandidates picks the File/Function/Type/Module nodes whose
// CompositeSalience clears cfg.Analysis.LLMSalienceThreshold, capped
// at cfg.Analysis.MaxLLMBatchSize, highest score first.
func (a *SemanticAnalyzer) selectCandidates(ctx context.Context, s store.Store, cfg *config.Config) ([]semanticCandidate, error) {
	results, err := s.GetAnalysesByKind(ctx, models.AnalysisCompositeSalience)
	if err != nil {
		return nil, err
	}

	var out []semanticCandidate
	for _, r := range results {
		score, ok := toFloat64(r.Data["score"])
		if !ok || score < cfg.Analysis.LLMSalienceThreshold {
			continue
		}
		node, err := s.GetNode(ctx, r.NodeID)
		if err != nil {
			continue
		}
		out = append(out, semanticCandidate{node: node, score: score})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	if cfg.Analysis.MaxLLMBatchSize > 0 && len(out) > cfg.Analysis.MaxLLMBatchSize {
		out = out[:cfg.Analysis.MaxLLMBatchSize]
	}
	return out, nil
}

func isReusableDocComment(doc string) bool {
	if len(strings.TrimSpace(doc)) < 20 {
		return false
	}
	lower := strings.ToLower(doc)
	for _, marker := range placeholderDocMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

func refCounts(ctx context.Context, s store.Store, id models.NodeID) (incoming, outgoing int, err error) {
	edges, err := s.GetEdgesInvolving(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	for _, e := range edges {
		for _, m := range e.Members {
			if m.NodeID != id {
				continue
			}
			switch m.Role {
			case models.RoleCallee, models.RoleImported:
				incoming++
			case models.RoleCaller, models.RoleImporter:
				outgoing++
			}
		}
	}
	return incoming, outgoing, nil
}

func semanticInputHash(modelID string, contentHash *uint64, docComment string, incoming, outgoing int) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "model:%s;template:%s;doc:%s;in:%d;out:%d;", modelID, semanticTemplateVersion, docComment, incoming, outgoing)
	if contentHash != nil {
		fmt.Fprintf(h, "content:%d;", *contentHash)
	}
	return h.Sum64()
}

func confidenceFor(incoming, outgoing int) Confidence {
	total := incoming + outgoing
	switch {
	case total >= 10:
		return ConfidenceHigh
	case total >= 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

const semanticSystemPrompt = "You summarize source code entities for a codebase map in one or two plain sentences. Be precise and avoid restating the name."

func semanticUserPrompt(n *models.Node) string {
	doc, _ := n.Metadata["doc_comment"].(string)
	return fmt.Sprintf("Entity: %s\nKind: %s\nExisting documentation: %s\nSummarize what this does and why it matters in this codebase.", n.Name, n.Kind, doc)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

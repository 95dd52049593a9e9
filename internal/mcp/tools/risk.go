package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// RiskTool implements homer_risk(path): the collected analyses for a
// file plus a derived qualitative risk_level. Grounded on
// original_source/homer-mcp's do_risk/compute_risk_level, ported
// field-for-field (same analysis kinds, same score thresholds and
// bands from spec §6).
type RiskTool struct {
	store store.Store
}

func NewRiskTool(s store.Store) *RiskTool { return &RiskTool{store: s} }

func (t *RiskTool) Name() string { return "homer_risk" }

var riskAnalysisKeys = []struct {
	kind string
	key  string
}{
	{models.AnalysisChangeFrequency, "change_frequency"},
	{models.AnalysisContributorConcentration, "contributor_concentration"},
	{models.AnalysisCompositeSalience, "salience"},
	{models.AnalysisCommunityAssignment, "community"},
	{models.AnalysisStabilityClassification, "stability"},
}

func (t *RiskTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return "", fmt.Errorf("'path' is required")
	}

	fileNode, err := t.store.GetNodeByName(ctx, models.NodeFile, path)
	if err != nil {
		return fmt.Sprintf("File '%s' not found in Homer database", path), nil
	}

	risk := map[string]any{"file": path}
	for _, spec := range riskAnalysisKeys {
		if result, err := t.store.GetAnalysis(ctx, fileNode.ID, spec.kind); err == nil && result != nil {
			risk[spec.key] = result.Data
		}
	}
	risk["risk_level"] = computeRiskLevel(risk)

	out, err := json.MarshalIndent(risk, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json error: %w", err)
	}
	return string(out), nil
}

func (t *RiskTool) GetSchema() map[string]interface{} {
	return map[string]interface{}{
		"description": "Assess risk factors for a file path. Returns change frequency, bus factor, salience, community, and overall risk level. Use before modifying important files.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{"type": "string", "description": "File path relative to repo root"},
			},
			"required": []string{"path"},
		},
	}
}

// computeRiskLevel reproduces spec §6's integer-banded score:
// salience contributes 0-3, a bus factor of at most 1 contributes 2,
// and churn contributes 1-2, banded 0-1 low / 2-3 medium / 4-5 high /
// 6+ critical.
func computeRiskLevel(risk map[string]any) string {
	score := 0

	if sal, ok := risk["salience"].(map[string]any); ok {
		if s, ok := asFloat(sal["score"]); ok {
			switch {
			case s > 0.7:
				score += 3
			case s > 0.4:
				score += 2
			case s > 0.2:
				score += 1
			}
		}
	}

	if cc, ok := risk["contributor_concentration"].(map[string]any); ok {
		if bf, ok := asFloat(cc["bus_factor"]); ok && bf <= 1 {
			score += 2
		}
	}

	if cf, ok := risk["change_frequency"].(map[string]any); ok {
		if total, ok := asFloat(cf["total"]); ok {
			switch {
			case total > 20:
				score += 2
			case total > 10:
				score += 1
			}
		}
	}

	switch {
	case score <= 1:
		return "low"
	case score <= 3:
		return "medium"
	case score <= 5:
		return "high"
	default:
		return "critical"
	}
}

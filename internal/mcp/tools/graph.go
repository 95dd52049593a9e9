package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

const defaultGraphTop = 10

// GraphTool implements homer_graph(top?, metric?): the top-N nodes by
// a requested centrality/salience metric. Grounded on
// original_source/homer-mcp's do_graph, including its metric-to-
// AnalysisResultKind and metric-to-score-field mappings.
type GraphTool struct {
	store store.Store
}

func NewGraphTool(s store.Store) *GraphTool { return &GraphTool{store: s} }

func (t *GraphTool) Name() string { return "homer_graph" }

type graphResultEntry struct {
	Name  string         `json:"name"`
	Score float64        `json:"score"`
	Data  map[string]any `json:"data"`
}

func (t *GraphTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	topN := defaultGraphTop
	if v, ok := args["top"].(float64); ok && v > 0 {
		topN = int(v)
	}
	metric, _ := args["metric"].(string)
	if metric == "" {
		metric = "salience"
	}

	analysisKind, scoreField := metricToKindAndField(metric)

	results, err := t.store.GetAnalysesByKind(ctx, analysisKind)
	if err != nil {
		return "", fmt.Errorf("store error: %w", err)
	}

	type scored struct {
		nodeID models.NodeID
		value  float64
		data   map[string]any
	}
	var candidates []scored
	for _, r := range results {
		v, ok := asFloat(r.Data[scoreField])
		if !ok {
			continue
		}
		candidates = append(candidates, scored{nodeID: r.NodeID, value: v, data: r.Data})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].value > candidates[j].value })

	entries := make([]graphResultEntry, 0, topN)
	for i, c := range candidates {
		if i >= topN {
			break
		}
		name := fmt.Sprintf("node:%d", c.nodeID)
		if n, err := t.store.GetNode(ctx, c.nodeID); err == nil && n != nil {
			name = n.Name
		}
		entries = append(entries, graphResultEntry{Name: name, Score: c.value, Data: c.data})
	}

	out, err := json.MarshalIndent(map[string]any{
		"metric":  metric,
		"count":   len(entries),
		"results": entries,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json error: %w", err)
	}
	return string(out), nil
}

func (t *GraphTool) GetSchema() map[string]interface{} {
	return map[string]interface{}{
		"description": "Get centrality metrics for top entities in the codebase. Identifies load-bearing code, structural bottlenecks, and architectural hubs.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"top":    map[string]interface{}{"type": "integer", "description": "Number of top entities to return (default: 10)"},
				"metric": map[string]interface{}{"type": "string", "description": "Metric: pagerank, betweenness, hits, salience (default: salience)"},
			},
		},
	}
}

func metricToKindAndField(metric string) (kind, field string) {
	switch metric {
	case "pagerank":
		return models.AnalysisPageRank, "pagerank"
	case "betweenness":
		return models.AnalysisBetweennessCentrality, "score"
	case "hits":
		return models.AnalysisHITS, "authority_score"
	default:
		return models.AnalysisCompositeSalience, "score"
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

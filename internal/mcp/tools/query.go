package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// maxQueryResults caps homer_query's result set (spec §6: "up to 20
// matching nodes").
const maxQueryResults = 20

// QueryTool implements homer_query(name, kind?): substring name lookup
// across node kinds, each hit annotated with its CompositeSalience
// when one has been computed. Grounded on original_source/homer-mcp's
// do_query, adapted from serde_json::Value assembly to typed structs
// marshaled with encoding/json.
type QueryTool struct {
	store store.Store
}

func NewQueryTool(s store.Store) *QueryTool { return &QueryTool{store: s} }

func (t *QueryTool) Name() string { return "homer_query" }

type queryResultEntry struct {
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Salience map[string]any `json:"salience,omitempty"`
}

// Execute runs the lookup. A successful-but-empty search is not an
// error; it returns a message result, matching the original's
// "No entities found matching '...'" response.
func (t *QueryTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	name, _ := args["name"].(string)
	if name == "" {
		return "", fmt.Errorf("'name' is required")
	}
	kindArg, _ := args["kind"].(string)

	filter := models.NodeFilter{NameContains: name}
	if kind, ok := parseNodeKind(kindArg); ok {
		filter.Kind = kind
	}

	nodes, err := t.store.FindNodes(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("store error: %w", err)
	}
	if len(nodes) == 0 {
		return fmt.Sprintf("No entities found matching '%s'", name), nil
	}

	results := make([]queryResultEntry, 0, maxQueryResults)
	for i, n := range nodes {
		if i >= maxQueryResults {
			break
		}
		entry := queryResultEntry{Name: n.Name, Kind: string(n.Kind), Metadata: n.Metadata}
		if sal, err := t.store.GetAnalysis(ctx, n.ID, models.AnalysisCompositeSalience); err == nil && sal != nil {
			entry.Salience = sal.Data
		}
		results = append(results, entry)
	}

	out, err := json.MarshalIndent(map[string]any{
		"count":   len(nodes),
		"results": results,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json error: %w", err)
	}
	return string(out), nil
}

func (t *QueryTool) GetSchema() map[string]interface{} {
	return map[string]interface{}{
		"description": "Look up entities (functions, types, files, modules) by name in the Homer knowledge base. Returns metadata and salience data.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{"type": "string", "description": "Entity name or substring to search for"},
				"kind": map[string]interface{}{"type": "string", "description": "Kind filter: function, type, file, module (omit for all)"},
			},
			"required": []string{"name"},
		},
	}
}

// parseNodeKind maps the tool's free-form kind string onto NodeKind,
// matching original_source/homer-mcp's parse_node_kind synonyms.
func parseNodeKind(s string) (models.NodeKind, bool) {
	switch s {
	case "function", "fn":
		return models.NodeFunction, true
	case "type", "struct", "class":
		return models.NodeType, true
	case "file":
		return models.NodeFile, true
	case "module", "dir", "directory":
		return models.NodeModule, true
	case "commit":
		return models.NodeCommit, true
	case "contributor", "author":
		return models.NodeContributor, true
	case "pr", "pullrequest":
		return models.NodePullRequest, true
	case "issue":
		return models.NodeIssue, true
	case "dep", "dependency":
		return models.NodeExternalDep, true
	case "document", "doc":
		return models.NodeDocument, true
	default:
		return "", false
	}
}

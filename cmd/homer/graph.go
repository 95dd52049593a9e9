package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/mcp/tools"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show top nodes by a centrality or salience metric, or list communities",
	Args:  cobra.NoArgs,
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().String("type", "combined", "edge type to consider: call, import, combined (informational; the store does not separate edge kinds by analysis)")
	graphCmd.Flags().String("metric", "salience", "metric: pagerank, betweenness, hits, salience")
	graphCmd.Flags().Int("top", 10, "number of results")
	graphCmd.Flags().Bool("list-communities", false, "list detected communities instead of ranking nodes")
	graphCmd.Flags().Int("community", 0, "restrict output to members of the given community id")
	graphCmd.Flags().String("format", "text", "output format: text, json, dot, mermaid")
}

func runGraph(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(nil)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	format, _ := cmd.Flags().GetString("format")
	listCommunities, _ := cmd.Flags().GetBool("list-communities")

	ctx := context.Background()
	if listCommunities {
		return runListCommunities(ctx, s, format)
	}

	metric, _ := cmd.Flags().GetString("metric")
	top, _ := cmd.Flags().GetInt("top")
	community, _ := cmd.Flags().GetInt("community")

	tool := tools.NewGraphTool(s)
	result, err := tool.Execute(ctx, map[string]interface{}{"metric": metric, "top": float64(top)})
	if err != nil {
		return err
	}

	if community != 0 {
		result, err = filterGraphResultByCommunity(ctx, s, result, community)
		if err != nil {
			return err
		}
	}

	switch format {
	case "json":
		fmt.Println(result)
	case "dot", "mermaid":
		fmt.Println(renderGraphAs(format, result))
	default:
		printHumanized(result)
	}
	return nil
}

// runListCommunities groups File nodes with a stored CommunityAssignment
// analysis by their community_id and prints membership counts.
func runListCommunities(ctx context.Context, s store.Store, format string) error {
	results, err := s.GetAnalysesByKind(ctx, models.AnalysisCommunityAssignment)
	if err != nil {
		return fmt.Errorf("list communities: %w", err)
	}

	counts := map[float64]int{}
	labels := map[float64]string{}
	for _, r := range results {
		id, _ := asFloat(r.Data["community_id"])
		counts[id]++
		if label, ok := r.Data["community_label"].(string); ok {
			labels[id] = label
		}
	}

	ids := make([]float64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Float64s(ids)

	type communityEntry struct {
		ID      float64 `json:"id"`
		Label   string  `json:"label,omitempty"`
		Members int     `json:"members"`
	}
	entries := make([]communityEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, communityEntry{ID: id, Label: labels[id], Members: counts[id]})
	}

	if format == "json" {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	Header("Communities")
	for _, e := range entries {
		if e.Label != "" {
			Infof("community %d (%s): %d members", int(e.ID), e.Label, e.Members)
		} else {
			Infof("community %d: %d members", int(e.ID), e.Members)
		}
	}
	return nil
}

// filterGraphResultByCommunity drops ranked entries whose node isn't a
// member of the given community, re-marshaling the tool's JSON body.
func filterGraphResultByCommunity(ctx context.Context, s store.Store, jsonResult string, community int) (string, error) {
	var parsed struct {
		Metric  string                   `json:"metric"`
		Count   int                      `json:"count"`
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal([]byte(jsonResult), &parsed); err != nil {
		return jsonResult, nil
	}

	members := map[string]bool{}
	assignments, err := s.GetAnalysesByKind(ctx, models.AnalysisCommunityAssignment)
	if err != nil {
		return jsonResult, err
	}
	for _, r := range assignments {
		id, _ := asFloat(r.Data["community_id"])
		if int(id) != community {
			continue
		}
		node, err := s.GetNode(ctx, r.NodeID)
		if err == nil {
			members[node.Name] = true
		}
	}

	filtered := parsed.Results[:0]
	for _, entry := range parsed.Results {
		if name, ok := entry["name"].(string); ok && members[name] {
			filtered = append(filtered, entry)
		}
	}
	parsed.Results = filtered
	parsed.Count = len(filtered)

	out, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return jsonResult, err
	}
	return string(out), nil
}

// renderGraphAs renders a graph tool's ranked-node JSON body as a flat
// DOT or Mermaid node list; there are no stored edges between ranked
// entries at this layer, so both formats emit nodes only, sized or
// styled by score.
func renderGraphAs(format, jsonResult string) string {
	var parsed struct {
		Results []struct {
			Name  string  `json:"name"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(jsonResult), &parsed); err != nil {
		return jsonResult
	}

	switch format {
	case "dot":
		out := "digraph homer {\n"
		for _, r := range parsed.Results {
			out += fmt.Sprintf("  %q [label=%q];\n", r.Name, fmt.Sprintf("%s (%.3f)", r.Name, r.Score))
		}
		out += "}\n"
		return out
	case "mermaid":
		out := "graph TD\n"
		for i, r := range parsed.Results {
			out += fmt.Sprintf("  n%d[%q]\n", i, fmt.Sprintf("%s (%.3f)", r.Name, r.Score))
		}
		return out
	default:
		return jsonResult
	}
}

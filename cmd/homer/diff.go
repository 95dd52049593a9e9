package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/models"
)

var diffCmd = &cobra.Command{
	Use:   "diff REF1 REF2",
	Short: "Compare two snapshots' aggregate topology and current analyses",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().String("format", "text", "output format: text, json, markdown")
	diffCmd.Flags().String("include", "topology,centrality,communities,coupling", "comma-separated sections to include")
}

// diffResult compares two snapshot labels' recorded node/edge counts.
// Snapshots only persist aggregate counts (spec §4.1's Snapshot type),
// so this reports topology deltas exactly and falls back to the
// store's current (not historical) analyses for centrality,
// communities and coupling context.
type diffResult struct {
	Ref1     string             `json:"ref1"`
	Ref2     string             `json:"ref2"`
	Topology *topologyDiff      `json:"topology,omitempty"`
	Top      []map[string]any   `json:"centrality,omitempty"`
	Communes []map[string]any   `json:"communities,omitempty"`
	Coupling []map[string]any   `json:"coupling,omitempty"`
	Notes    []string           `json:"notes,omitempty"`
}

type topologyDiff struct {
	NodesBefore int `json:"nodes_before"`
	NodesAfter  int `json:"nodes_after"`
	EdgesBefore int `json:"edges_before"`
	EdgesAfter  int `json:"edges_after"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(nil)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	snaps, err := s.ListSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	byLabel := map[string]*models.Snapshot{}
	for _, snap := range snaps {
		byLabel[snap.Label] = snap
	}

	ref1, ref2 := args[0], args[1]
	result := diffResult{Ref1: ref1, Ref2: ref2}

	snap1, ok1 := byLabel[ref1]
	snap2, ok2 := byLabel[ref2]
	if ok1 && ok2 {
		result.Topology = &topologyDiff{
			NodesBefore: snap1.NodeCount, NodesAfter: snap2.NodeCount,
			EdgesBefore: snap1.EdgeCount, EdgesAfter: snap2.EdgeCount,
		}
	} else {
		result.Notes = append(result.Notes, "one or both refs are not snapshot labels; only current-state sections are available")
	}

	include, _ := cmd.Flags().GetString("include")
	sections := strings.Split(include, ",")

	for _, section := range sections {
		switch strings.TrimSpace(section) {
		case "centrality":
			result.Top = analysisSummary(ctx, s, models.AnalysisPageRank, "pagerank")
		case "communities":
			result.Communes = analysisSummary(ctx, s, models.AnalysisCommunityAssignment, "community_id")
		case "coupling":
			result.Coupling = analysisSummary(ctx, s, models.AnalysisCompositeSalience, "score")
		}
	}

	format, _ := cmd.Flags().GetString("format")
	return printDiffResult(result, format)
}

func analysisSummary(ctx context.Context, s interface {
	GetAnalysesByKind(ctx context.Context, kind string) ([]*models.AnalysisResult, error)
	GetNode(ctx context.Context, id models.NodeID) (*models.Node, error)
}, kind, field string) []map[string]any {
	results, err := s.GetAnalysesByKind(ctx, kind)
	if err != nil {
		return nil
	}
	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		name := fmt.Sprintf("node:%d", r.NodeID)
		if node, err := s.GetNode(ctx, r.NodeID); err == nil {
			name = node.Name
		}
		out = append(out, map[string]any{"name": name, field: r.Data[field]})
	}
	return out
}

func printDiffResult(result diffResult, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "markdown":
		fmt.Printf("# Diff %s..%s\n\n", result.Ref1, result.Ref2)
		if result.Topology != nil {
			fmt.Printf("- nodes: %d -> %d\n", result.Topology.NodesBefore, result.Topology.NodesAfter)
			fmt.Printf("- edges: %d -> %d\n", result.Topology.EdgesBefore, result.Topology.EdgesAfter)
		}
		for _, n := range result.Notes {
			fmt.Printf("> %s\n", n)
		}
	default:
		Header(fmt.Sprintf("Diff %s..%s", result.Ref1, result.Ref2))
		if result.Topology != nil {
			Infof("nodes: %d -> %d", result.Topology.NodesBefore, result.Topology.NodesAfter)
			Infof("edges: %d -> %d", result.Topology.EdgesBefore, result.Topology.EdgesAfter)
		}
		for _, n := range result.Notes {
			Warning(n)
		}
	}
	return nil
}

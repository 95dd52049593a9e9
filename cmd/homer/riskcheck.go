package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

var riskCheckCmd = &cobra.Command{
	Use:   "risk-check",
	Short: "Score every File node and fail if any exceeds the risk threshold",
	Args:  cobra.NoArgs,
	RunE:  runRiskCheck,
}

func init() {
	riskCheckCmd.Flags().Float64("threshold", 0.7, "fail if any file's score is at or above this value")
	riskCheckCmd.Flags().String("filter", "", "glob restricting which file paths are scored")
	riskCheckCmd.Flags().String("format", "text", "output format: text, json")
}

// fileRiskScore is spec §6's risk-check formula, a fixed weighted sum
// distinct from both the tool server's banded risk_level and
// render.RiskMapRenderer's risk_map.json score.
type fileRiskScore struct {
	Path       string  `json:"path"`
	Score      float64 `json:"score"`
	Salience   float64 `json:"salience"`
	BusFactor  int     `json:"bus_factor"`
	Churn      int     `json:"churn"`
	OverThresh bool    `json:"-"`
}

// asFloat normalizes a dynamically-typed analysis Data value: SQLite
// round-trips every number through JSON as float64, but MemoryStore
// (used in tests) keeps whatever Go type the caller stored.
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

func computeFileRiskScore(ctx context.Context, s store.Store, node *models.Node) (fileRiskScore, error) {
	result := fileRiskScore{Path: node.Name}

	if sal, err := s.GetAnalysis(ctx, node.ID, models.AnalysisCompositeSalience); err == nil {
		if v, ok := asFloat(sal.Data["score"]); ok {
			result.Salience = v
		}
	}

	busFactor := -1
	if cc, err := s.GetAnalysis(ctx, node.ID, models.AnalysisContributorConcentration); err == nil {
		if v, ok := asFloat(cc.Data["bus_factor"]); ok {
			busFactor = int(v)
		}
	}
	result.BusFactor = busFactor

	churn := 0
	if cf, err := s.GetAnalysis(ctx, node.ID, models.AnalysisChangeFrequency); err == nil {
		if v, ok := asFloat(cf.Data["total"]); ok {
			churn = int(v)
		}
	}
	result.Churn = churn

	score := 0.4 * result.Salience
	switch {
	case busFactor >= 0 && busFactor <= 1:
		score += 0.3
	case busFactor >= 0 && busFactor <= 2:
		score += 0.15
	}
	switch {
	case churn > 20:
		score += 0.3
	case churn > 10:
		score += 0.2
	case churn > 5:
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	result.Score = score
	return result, nil
}

func runRiskCheck(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(nil)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	filterGlob, _ := cmd.Flags().GetString("filter")
	format, _ := cmd.Flags().GetString("format")

	ctx := context.Background()
	nodes, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		return fmt.Errorf("find file nodes: %w", err)
	}

	var scores []fileRiskScore
	for _, n := range nodes {
		if filterGlob != "" {
			if ok, _ := filepath.Match(filterGlob, n.Name); !ok {
				continue
			}
		}
		fr, err := computeFileRiskScore(ctx, s, n)
		if err != nil {
			return err
		}
		fr.OverThresh = fr.Score >= threshold
		scores = append(scores, fr)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	violations := 0
	for _, fr := range scores {
		if fr.OverThresh {
			violations++
		}
	}

	if format == "json" {
		out, err := json.MarshalIndent(map[string]interface{}{
			"threshold":  threshold,
			"violations": violations,
			"files":      scores,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		Header("Risk Check")
		for _, fr := range scores {
			line := fmt.Sprintf("%-50s score=%.2f salience=%.2f bus_factor=%d churn=%d", fr.Path, fr.Score, fr.Salience, fr.BusFactor, fr.Churn)
			if fr.OverThresh {
				Errorln(line)
			} else {
				fmt.Println("  " + line)
			}
		}
		if violations > 0 {
			Warningf("%d file(s) at or above threshold %.2f", violations, threshold)
		} else {
			Success("no files over threshold")
		}
	}

	if violations > 0 {
		return &riskCheckViolation{count: violations}
	}
	return nil
}

// riskCheckViolation is risk-check's own error type: a business
// condition (spec §7), not a technical fault, so main() still exits
// non-zero but via the normal Cobra error path rather than a panic.
type riskCheckViolation struct{ count int }

func (e *riskCheckViolation) Error() string {
	return fmt.Sprintf("%d file(s) violate the risk threshold", e.count)
}

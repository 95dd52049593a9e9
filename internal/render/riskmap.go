package render

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// RiskMapRenderer produces homer-risk.json, a direct port of
// original_source/homer-core/src/render/risk_map.rs's scoring
// algorithm and schema (spec §4.6's risk-map required renderer).
type RiskMapRenderer struct{}

func NewRiskMapRenderer() *RiskMapRenderer { return &RiskMapRenderer{} }

func (r *RiskMapRenderer) Name() string       { return "risk_map" }
func (r *RiskMapRenderer) OutputPath() string { return "homer-risk.json" }

// RiskMap is the `homer-risk.json` schema spec §4.6 names verbatim.
type RiskMap struct {
	Version     string      `json:"version"`
	GeneratedAt string      `json:"generated_at"`
	RiskAreas   []RiskArea  `json:"risk_areas"`
	SafeAreas   []SafeArea  `json:"safe_areas"`
}

type RiskArea struct {
	Path            string       `json:"path"`
	RiskLevel       string       `json:"risk_level"`
	RiskScore       float64      `json:"risk_score"`
	Reasons         []RiskReason `json:"reasons"`
	Recommendations []string     `json:"recommendations"`
}

type RiskReason struct {
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	Centrality    *float64 `json:"centrality,omitempty"`
	BusFactor     *int     `json:"bus_factor,omitempty"`
	HasDocComment *bool    `json:"has_doc_comment,omitempty"`
}

type SafeArea struct {
	Path           string  `json:"path"`
	RiskLevel      string  `json:"risk_level"`
	RiskScore      float64 `json:"risk_score"`
	StabilityClass string  `json:"stability_class"`
}

// riskData is the precomputed lookup set assess_file_risk reads from,
// mirroring risk_map.rs's RiskData struct field-for-field.
type riskData struct {
	pageRank     map[models.NodeID]float64
	busFactor    map[models.NodeID]int
	stability    map[models.NodeID]string
	testFiles    []string
	fileHasDocs  map[string]bool
}

func loadRiskData(ctx context.Context, s store.Store) (*riskData, error) {
	data := &riskData{
		pageRank:    map[models.NodeID]float64{},
		busFactor:   map[models.NodeID]int{},
		stability:   map[models.NodeID]string{},
		fileHasDocs: map[string]bool{},
	}

	salienceResults, err := s.GetAnalysesByKind(ctx, models.AnalysisCompositeSalience)
	if err != nil {
		return nil, err
	}
	for _, res := range salienceResults {
		components, _ := res.Data["components"].(map[string]any)
		if components == nil {
			continue
		}
		if pr, ok := components["pagerank"].(float64); ok {
			data.pageRank[res.NodeID] = pr
		}
	}

	busResults, err := s.GetAnalysesByKind(ctx, models.AnalysisContributorConcentration)
	if err != nil {
		return nil, err
	}
	for _, res := range busResults {
		if bf, ok := asIntValue(res.Data["bus_factor"]); ok {
			data.busFactor[res.NodeID] = bf
		}
	}

	stabResults, err := s.GetAnalysesByKind(ctx, models.AnalysisStabilityClassification)
	if err != nil {
		return nil, err
	}
	for _, res := range stabResults {
		if cls, ok := res.Data["classification"].(string); ok {
			data.stability[res.NodeID] = cls
		}
	}

	files, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, "test") || strings.Contains(name, "spec") || strings.HasSuffix(name, "_test.go") {
			data.testFiles = append(data.testFiles, f.Name)
		}
	}

	functions, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFunction})
	if err != nil {
		return nil, err
	}
	for _, fn := range functions {
		fp, ok := fn.Metadata["file"].(string)
		if !ok {
			continue
		}
		if _, hasDoc := fn.Metadata["doc_comment"]; hasDoc {
			data.fileHasDocs[fp] = true
		} else if _, seen := data.fileHasDocs[fp]; !seen {
			data.fileHasDocs[fp] = false
		}
	}

	return data, nil
}

func asIntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func buildRiskMap(ctx context.Context, s store.Store) (*RiskMap, error) {
	data, err := loadRiskData(ctx, s)
	if err != nil {
		return nil, err
	}

	files, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		return nil, err
	}

	var riskAreas []RiskArea
	var safeAreas []SafeArea

	for _, file := range files {
		reasons, riskVal := assessFileRisk(file.ID, file.Name, data)

		if len(reasons) == 0 {
			stabCls := data.stability[file.ID]
			if stabCls == "" {
				stabCls = "Unknown"
			}
			safeAreas = append(safeAreas, SafeArea{
				Path:           file.Name,
				RiskLevel:      classifyRiskLevel(riskVal),
				RiskScore:      riskVal,
				StabilityClass: stabCls,
			})
			continue
		}
		riskAreas = append(riskAreas, RiskArea{
			Path:            file.Name,
			RiskLevel:       classifyRiskLevel(riskVal),
			RiskScore:       riskVal,
			Reasons:         reasons,
			Recommendations: generateRecommendations(reasons),
		})
	}

	sort.SliceStable(riskAreas, func(i, j int) bool { return riskAreas[i].RiskScore > riskAreas[j].RiskScore })
	sort.SliceStable(safeAreas, func(i, j int) bool { return safeAreas[i].RiskScore < safeAreas[j].RiskScore })

	return &RiskMap{
		Version:     "1.0",
		GeneratedAt: nowRFC3339(),
		RiskAreas:   riskAreas,
		SafeAreas:   safeAreas,
	}, nil
}

func assessFileRisk(fileID models.NodeID, fileName string, data *riskData) ([]RiskReason, float64) {
	var reasons []RiskReason
	riskVal := 0.0

	pagerank := data.pageRank[fileID]
	highCentrality := pagerank > 0.5

	if highCentrality && !hasAssociatedTest(fileName, data.testFiles) {
		pr := pagerank
		reasons = append(reasons, RiskReason{
			Type:        "high_centrality_low_tests",
			Description: "PageRank " + formatScore(pagerank) + " but no test file detected",
			Centrality:  &pr,
		})
		riskVal += 0.3
	}

	if bf, ok := data.busFactor[fileID]; ok && bf <= 1 {
		busFactor := bf
		reasons = append(reasons, RiskReason{
			Type:        "knowledge_silo",
			Description: "Only a single contributor in recent history",
			BusFactor:   &busFactor,
		})
		riskVal += 0.2
	}

	if data.stability[fileID] == "ActiveCritical" {
		pr := pagerank
		reasons = append(reasons, RiskReason{
			Type:        "volatile_critical",
			Description: "High centrality with high churn",
			Centrality:  &pr,
		})
		riskVal += 0.25
	}

	if highCentrality && !data.fileHasDocs[fileName] {
		pr := pagerank
		hasDoc := false
		reasons = append(reasons, RiskReason{
			Type:          "undocumented_critical",
			Description:   "High-centrality file with no doc comments",
			Centrality:    &pr,
			HasDocComment: &hasDoc,
		})
		riskVal += 0.15
	}

	if riskVal > 1.0 {
		riskVal = 1.0
	}
	return reasons, riskVal
}

func hasAssociatedTest(filePath string, testFiles []string) bool {
	stem := filePath
	if idx := strings.LastIndexByte(filePath, '/'); idx >= 0 {
		stem = filePath[idx+1:]
	}
	if idx := strings.IndexByte(stem, '.'); idx >= 0 {
		stem = stem[:idx]
	}
	for _, t := range testFiles {
		if strings.Contains(t, stem) {
			return true
		}
	}
	return false
}

func classifyRiskLevel(val float64) string {
	switch {
	case val >= 0.7:
		return "high"
	case val >= 0.4:
		return "medium"
	case val > 0.0:
		return "low"
	default:
		return "none"
	}
}

func generateRecommendations(reasons []RiskReason) []string {
	var recs []string
	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			recs = append(recs, s)
		}
	}
	for _, reason := range reasons {
		switch reason.Type {
		case "high_centrality_low_tests":
			add("Consider adding test coverage before making changes")
			add("Run full test suite after any modification")
		case "knowledge_silo":
			add("Request review from the primary contributor")
			add("Consider pair programming to spread knowledge")
		case "volatile_critical":
			add("This file changes frequently and is structurally important, extra review recommended")
		case "undocumented_critical":
			add("Add doc comments to public entities before making changes")
		}
	}
	return recs
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

func formatScore(v float64) string { return fmt.Sprintf("%.2f", v) }

func (r *RiskMapRenderer) Render(ctx context.Context, s store.Store, _ *config.Config) (string, error) {
	riskMap, err := buildRiskMap(ctx, s)
	if err != nil {
		return "", homererrors.RenderError(err, "build risk map")
	}
	out, err := json.MarshalIndent(riskMap, "", "  ")
	if err != nil {
		return "", homererrors.RenderError(err, "marshal risk map")
	}
	return string(out), nil
}

package analyze

import (
	"context"
	"sort"
	"time"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

const (
	day30 = 30 * 24 * time.Hour
	day90 = 90 * 24 * time.Hour
)

// StabilityClass is the categorical StabilityClassification value.
type StabilityClass string

const (
	ActiveCritical    StabilityClass = "ActiveCritical"
	ActiveLocalized   StabilityClass = "ActiveLocalized"
	FoundationalStable StabilityClass = "FoundationalStable"
	CriticalSilo      StabilityClass = "CriticalSilo"
	Background        StabilityClass = "Background"
)

// BehavioralAnalyzer computes ChangeFrequency, ContributorConcentration
// and (once centrality has run) StabilityClassification per file,
// generalizing the teacher's internal/risk ownership/temporal
// calculators onto the hypergraph store in place of dual
// Postgres/Neo4j writes.
type BehavioralAnalyzer struct{}

func NewBehavioralAnalyzer() *BehavioralAnalyzer { return &BehavioralAnalyzer{} }

func (a *BehavioralAnalyzer) Name() string { return "behavioral" }

func (a *BehavioralAnalyzer) Produces() []string {
	return []string{
		models.AnalysisChangeFrequency,
		models.AnalysisContributorConcentration,
		models.AnalysisStabilityClassification,
	}
}

func (a *BehavioralAnalyzer) Requires() []string { return nil }

func (a *BehavioralAnalyzer) NeedsRerun(ctx context.Context, s store.Store) (bool, error) {
	return true, nil
}

type fileChangeStats struct {
	total, last30, last90 int
	contributorCommits    map[models.NodeID]int
	contentHash           *uint64
}

func (a *BehavioralAnalyzer) Analyze(ctx context.Context, s store.Store, cfg *config.Config) (*AnalyzeStats, error) {
	start := time.Now()
	stats := &AnalyzeStats{}

	files, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.AnalyzeError(err, "list file nodes")
	}

	commitTimes, err := commitTimestamps(ctx, s)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.AnalyzeError(err, "read commit timestamps")
	}
	commitAuthor, err := commitAuthors(ctx, s)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.AnalyzeError(err, "read commit authors")
	}

	now := time.Now()
	perFile := make(map[models.NodeID]*fileChangeStats, len(files))
	totals := make([]float64, 0, len(files))

	for _, f := range files {
		edges, err := s.GetEdgesInvolving(ctx, f.ID)
		if err != nil {
			stats.recordError(f.ID, homererrors.AnalyzeError(err, "list edges for file"))
			continue
		}
		fc := &fileChangeStats{contributorCommits: map[models.NodeID]int{}, contentHash: f.ContentHash}
		for _, e := range edges {
			if e.Kind != models.EdgeModifies {
				continue
			}
			var commitID models.NodeID
			var found bool
			for _, m := range e.Members {
				if m.Role == models.RoleCommit {
					commitID, found = m.NodeID, true
				}
			}
			if !found {
				continue
			}
			ts, ok := commitTimes[commitID]
			if !ok {
				continue
			}
			fc.total++
			age := now.Sub(ts)
			if age <= day30 {
				fc.last30++
			}
			if age <= day90 {
				fc.last90++
			}
			if contributor, ok := commitAuthor[commitID]; ok {
				fc.contributorCommits[contributor]++
			}
		}
		perFile[f.ID] = fc
		totals = append(totals, float64(fc.total))
	}

	sort.Float64s(totals)

	pageRanks := collectAnalysisScores(ctx, s, models.AnalysisPageRank, "pagerank")
	var maxPageRank float64
	if len(pageRanks) > 0 {
		maxPageRank = maxOf(pageRanks)
	}

	for _, f := range files {
		fc := perFile[f.ID]
		if fc == nil {
			continue
		}

		percentile := percentileRank(totals, float64(fc.total))
		freqData := map[string]any{
			"total":      fc.total,
			"last_30d":   fc.last30,
			"last_90d":   fc.last90,
			"percentile": percentile,
		}
		storeResult(ctx, s, stats, &models.AnalysisResult{
			NodeID:     f.ID,
			Kind:       models.AnalysisChangeFrequency,
			Data:       freqData,
			InputHash:  inputHash(fc.contentHash, contributorWeights(fc.contributorCommits)),
			ComputedAt: now,
		})

		busFactor, topShare := contributorConcentration(fc.contributorCommits)
		concentrationData := map[string]any{
			"bus_factor":          busFactor,
			"top_contributor_share": topShare,
		}
		storeResult(ctx, s, stats, &models.AnalysisResult{
			NodeID:     f.ID,
			Kind:       models.AnalysisContributorConcentration,
			Data:       concentrationData,
			InputHash:  inputHash(fc.contentHash, contributorWeights(fc.contributorCommits)),
			ComputedAt: now,
		})

		if pr, ok := pageRanks[f.ID]; ok && maxPageRank > 0 {
			normFreq := percentile / 100
			normCentrality := pr / maxPageRank
			class := classifyStability(normFreq, normCentrality, busFactor)
			storeResult(ctx, s, stats, &models.AnalysisResult{
				NodeID: f.ID,
				Kind:   models.AnalysisStabilityClassification,
				Data: map[string]any{
					"classification": string(class),
				},
				InputHash:  inputHash(fc.contentHash, map[models.NodeID]float64{f.ID: pr}),
				ComputedAt: now,
			})
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func contributorWeights(counts map[models.NodeID]int) map[models.NodeID]float64 {
	out := make(map[models.NodeID]float64, len(counts))
	for id, n := range counts {
		out[id] = float64(n)
	}
	return out
}

// contributorConcentration implements spec §4.5's bus_factor
// definition: the smallest k such that the top-k contributors by
// commit count together account for >= 50% of modifying commits.
func contributorConcentration(counts map[models.NodeID]int) (busFactor int, topShare float64) {
	if len(counts) == 0 {
		return 0, 0
	}
	totals := make([]int, 0, len(counts))
	sum := 0
	for _, n := range counts {
		totals = append(totals, n)
		sum += n
	}
	sort.Sort(sort.Reverse(sort.IntSlice(totals)))

	if sum == 0 {
		return 0, 0
	}
	topShare = float64(totals[0]) / float64(sum)

	cumulative := 0
	for i, n := range totals {
		cumulative += n
		busFactor = i + 1
		if float64(cumulative)/float64(sum) >= 0.5 {
			break
		}
	}
	return busFactor, topShare
}

// classifyStability buckets a file into the five stability categories
// by the cross-product of its normalized change frequency and
// normalized centrality (spec §4.5 names the cross-product but not
// explicit thresholds; a 0.5 median split on each axis, with low bus
// factor breaking the low-frequency/high-centrality tie toward
// CriticalSilo, is the decision recorded here).
func classifyStability(normFreq, normCentrality float64, busFactor int) StabilityClass {
	highFreq := normFreq >= 0.5
	highCentrality := normCentrality >= 0.5

	switch {
	case highFreq && highCentrality:
		return ActiveCritical
	case highFreq && !highCentrality:
		return ActiveLocalized
	case !highFreq && highCentrality && busFactor <= 1:
		return CriticalSilo
	case !highFreq && highCentrality:
		return FoundationalStable
	default:
		return Background
	}
}

// collectAnalysisScores reads every stored AnalysisResult of kind and
// extracts the named float64 field, for analyzers that consume
// another analyzer's already-computed output (spec §4.5 "centrality
// is read from the centrality analyzer's output").
func collectAnalysisScores(ctx context.Context, s store.Store, kind, field string) map[models.NodeID]float64 {
	results, err := s.GetAnalysesByKind(ctx, kind)
	if err != nil {
		return nil
	}
	out := make(map[models.NodeID]float64, len(results))
	for _, r := range results {
		if v, ok := r.Data[field]; ok {
			if f, ok := toFloat64(v); ok {
				out[r.NodeID] = f
			}
		}
	}
	return out
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

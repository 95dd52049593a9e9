package analyze

import (
	"context"
	"time"

	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// CompositeClass is the categorical CompositeSalience classification.
type CompositeClass string

const (
	HotCritical CompositeClass = "HotCritical"
	// CriticalSiloSalience reuses the CriticalSilo name from
	// StabilityClassification (spec §4.5 lists it under both outputs).
	CriticalSiloSalience CompositeClass = "CriticalSilo"
	FoundationalStableSalience CompositeClass = "FoundationalStable"
	ActiveLocalizedSalience    CompositeClass = "ActiveLocalized"
	BackgroundSalience         CompositeClass = "Background"
)

const (
	weightPageRank       = 0.40
	weightBetweenness    = 0.20
	weightHITSAuthority  = 0.15
	weightChangeFrequency = 0.15
	weightLowBusFactor   = 0.10
)

// computeComposite blends PageRank, betweenness, HITS authority and
// the Behavioral analyzer's ChangeFrequency/ContributorConcentration
// into CompositeSalience (spec §4.5's weighted combination), for every
// node that has at least a PageRank or betweenness score recorded —
// i.e. every Function (via the Calls graph) and File (via the
// Imports graph). Function/Type nodes borrow their containing File's
// behavioral scores through BelongsTo, since Behavioral only computes
// ChangeFrequency/ContributorConcentration per file; Module nodes have
// no centrality score (no module-level graph is built) and are
// excluded from CompositeSalience — documented in DESIGN.md.
func (a *CentralityAnalyzer) computeComposite(ctx context.Context, s store.Store, stats *AnalyzeStats, now time.Time) error {
	pageRanks := collectAnalysisScores(ctx, s, models.AnalysisPageRank, "pagerank")
	betweennesses := collectAnalysisScores(ctx, s, models.AnalysisBetweennessCentrality, "score")
	authorities := collectAnalysisScores(ctx, s, models.AnalysisHITS, "authority_score")
	changeFreqPercentiles := collectAnalysisScores(ctx, s, models.AnalysisChangeFrequency, "percentile")
	busFactors := collectAnalysisScores(ctx, s, models.AnalysisContributorConcentration, "bus_factor")

	fileOf, err := fileOfDefinition(ctx, s)
	if err != nil {
		return err
	}

	maxPageRank := maxOf(pageRanks)
	maxAuthority := maxOf(authorities)

	candidates := make(map[models.NodeID]bool, len(pageRanks)+len(betweennesses))
	for id := range pageRanks {
		candidates[id] = true
	}
	for id := range betweennesses {
		candidates[id] = true
	}

	for nodeID := range candidates {
		behavioralID := nodeID
		if container, ok := fileOf[nodeID]; ok {
			behavioralID = container
		}

		normPageRank := 0.0
		if maxPageRank > 0 {
			normPageRank = pageRanks[nodeID] / maxPageRank
		}
		normBetweenness := betweennesses[nodeID]
		normAuthority := 0.0
		if maxAuthority > 0 {
			normAuthority = authorities[nodeID] / maxAuthority
		}
		normFreq := changeFreqPercentiles[behavioralID] / 100
		busFactor, hasBusFactor := busFactors[behavioralID]

		bonus := 0.0
		if hasBusFactor && busFactor <= 1 {
			bonus = 1.0
		}

		score := weightPageRank*normPageRank +
			weightBetweenness*normBetweenness +
			weightHITSAuthority*normAuthority +
			weightChangeFrequency*normFreq +
			weightLowBusFactor*bonus

		class := classifyComposite(score, hasBusFactor && busFactor <= 1)

		storeResult(ctx, s, stats, &models.AnalysisResult{
			NodeID: nodeID,
			Kind:   models.AnalysisCompositeSalience,
			Data: map[string]any{
				"score":          score,
				"classification": string(class),
				"components": map[string]any{
					"pagerank":         normPageRank,
					"betweenness":      normBetweenness,
					"hits_authority":   normAuthority,
					"change_frequency": normFreq,
					"low_bus_factor":   bonus,
				},
			},
			InputHash:  inputHash(nil, map[models.NodeID]float64{nodeID: score}),
			ComputedAt: now,
		})
	}
	return nil
}

func classifyComposite(score float64, lowBusFactor bool) CompositeClass {
	switch {
	case score >= 0.75:
		return HotCritical
	case lowBusFactor && score >= 0.4:
		return CriticalSiloSalience
	case score >= 0.55:
		return FoundationalStableSalience
	case score >= 0.3:
		return ActiveLocalizedSalience
	default:
		return BackgroundSalience
	}
}

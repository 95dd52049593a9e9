// Package analyze implements the Analyzers of spec §4.5: Behavioral,
// Centrality, Community and (optional) Semantic. Each produces one or
// more AnalysisResult kinds (internal/models.AnalysisResultKind),
// reading its inputs from the store built by internal/extract and
// writing per-node results back through store.StoreAnalysis, mirroring
// the teacher's own risk/temporal/graph analyzers but against this
// module's hypergraph store instead of a dual Postgres/Neo4j backend.
package analyze

import (
	"context"
	"time"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// NodeError pairs a node with the HomerError raised while analyzing it.
type NodeError struct {
	Node models.NodeID
	Err  *homererrors.HomerError
}

// AnalyzeStats is the per-analyzer run summary spec §4.5 names.
type AnalyzeStats struct {
	ResultsStored int
	Duration      time.Duration
	Errors        []NodeError
}

func (s *AnalyzeStats) recordError(id models.NodeID, err *homererrors.HomerError) {
	s.Errors = append(s.Errors, NodeError{Node: id, Err: err})
}

// Analyzer is the capability every C5 component implements. Requires
// names the AnalysisResultKinds that must already exist in the store
// for this analyzer to produce complete output; NeedsRerun lets an
// analyzer decide it has nothing new to do (default true — most
// analyzers recompute every invocation and rely on per-node input
// hashing to skip unchanged nodes internally).
type Analyzer interface {
	Name() string
	Produces() []string
	Requires() []string
	NeedsRerun(ctx context.Context, s store.Store) (bool, error)
	Analyze(ctx context.Context, s store.Store, cfg *config.Config) (*AnalyzeStats, error)
}

// storeResult writes r, bumping ResultsStored, converting any error
// into the per-node error list rather than aborting the whole run.
func storeResult(ctx context.Context, s store.Store, stats *AnalyzeStats, r *models.AnalysisResult) {
	if _, err := s.StoreAnalysis(ctx, r); err != nil {
		stats.recordError(r.NodeID, homererrors.AnalyzeError(err, "store analysis result").WithContext("kind", r.Kind))
		return
	}
	stats.ResultsStored++
}

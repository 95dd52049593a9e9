// Package pipeline implements the Orchestrator (spec §4.7): three
// strictly sequential phases — extraction, analysis, rendering — none
// of which aborts the run on a single component's failure, mirroring
// the teacher's internal/ingestion.Orchestrator (extract → store →
// derive → store, logged with *logrus.Logger, non-fatal per phase)
// generalized from a fixed GitHub ingest into this module's
// extract/analyze/render component lists.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rand/homer-sub001/internal/analyze"
	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/extract"
	"github.com/rand/homer-sub001/internal/langsupport"
	"github.com/rand/homer-sub001/internal/llm"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/render"
	"github.com/rand/homer-sub001/internal/store"
)

// ForceMode selects which cached state a run discards before it starts
// (spec §4.7's three force modes).
type ForceMode int

const (
	// ForceNone runs normally: extractors and analyzers consult their
	// own checkpoints/NeedsRerun and may skip unchanged work.
	ForceNone ForceMode = iota
	// Force clears all checkpoints before phase 1, so every extractor
	// reprocesses its full input.
	Force
	// ForceAnalysis clears all analysis results before phase 2.
	ForceAnalysis
	// ForceSemantic clears only SemanticSummary results before phase 2.
	ForceSemantic
)

// PipelineResult is the run summary spec §4.7 names.
type PipelineResult struct {
	ExtractNodes     int                         `json:"extract_nodes"`
	ExtractEdges     int                         `json:"extract_edges"`
	AnalysisResults  int                         `json:"analysis_results"`
	ArtifactsWritten int                         `json:"artifacts_written"`
	Errors           []homererrors.PipelineError `json:"errors"`
	Duration         time.Duration               `json:"duration"`
}

// Orchestrator coordinates the Extract → Analyze → Render sequence
// against a single repository.
type Orchestrator struct {
	extractors []extract.Extractor
	analyzers  []analyze.Analyzer
	logger     *logrus.Logger
}

// NewOrchestrator builds the default component set: the four
// extractors in spec §4.7's fixed phase-1 order, then the four
// analyzers in phase-2 order (Semantic last, since it alone declares a
// Requires() dependency on CompositeSalience). registry supplies the
// Structure/Graph extractors' language detection; provider supplies
// the Semantic analyzer's LLM backend (llm.NewNullProvider() disables
// it without special-casing the phase-2 loop). A nil logger falls
// back to logrus.New().
func NewOrchestrator(registry *langsupport.Registry, provider llm.Provider, logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{
		extractors: []extract.Extractor{
			extract.NewGitExtractor(),
			extract.NewStructureExtractor(registry),
			extract.NewGraphExtractor(registry),
			extract.NewDocumentExtractor(),
		},
		analyzers: []analyze.Analyzer{
			analyze.NewBehavioralAnalyzer(),
			analyze.NewCentralityAnalyzer(),
			analyze.NewCommunityAnalyzer(),
			analyze.NewSemanticAnalyzer(provider),
		},
		logger: logger,
	}
}

// Run executes one full pipeline pass against s, rooted at repoRoot.
// It returns a partial PipelineResult even when individual components
// fail; only a failure in the force-mode reset itself (a store-level
// failure, always SeverityCritical) aborts the run early.
func (o *Orchestrator) Run(ctx context.Context, s store.Store, repoRoot string, cfg *config.Config, force ForceMode) (*PipelineResult, error) {
	start := time.Now()
	result := &PipelineResult{}

	if err := o.applyForceMode(ctx, s, force); err != nil {
		return nil, err
	}

	o.runExtraction(ctx, s, repoRoot, cfg, result)
	o.runAnalysis(ctx, s, cfg, result)
	o.runRendering(ctx, s, cfg, repoRoot, result)

	result.Duration = time.Since(start)
	o.logger.WithFields(logrus.Fields{
		"extract_nodes":     result.ExtractNodes,
		"extract_edges":     result.ExtractEdges,
		"analysis_results":  result.AnalysisResults,
		"artifacts_written": result.ArtifactsWritten,
		"errors":            len(result.Errors),
		"duration":          result.Duration.String(),
	}).Info("pipeline run complete")

	return result, nil
}

func (o *Orchestrator) applyForceMode(ctx context.Context, s store.Store, force ForceMode) error {
	switch force {
	case Force:
		if err := s.ClearCheckpoints(ctx); err != nil {
			return homererrors.StoreError(err, "clear checkpoints for force run")
		}
		if err := s.ClearAnalyses(ctx); err != nil {
			return homererrors.StoreError(err, "clear analyses for force run")
		}
	case ForceAnalysis:
		if err := s.ClearAnalyses(ctx); err != nil {
			return homererrors.StoreError(err, "clear analyses for force_analysis run")
		}
	case ForceSemantic:
		if err := s.ClearAnalysesByKinds(ctx, []string{models.AnalysisSemanticSummary}); err != nil {
			return homererrors.StoreError(err, "clear semantic analyses for force_semantic run")
		}
	}
	return nil
}

// runExtraction drives phase 1 (spec §4.7: "Git → Structure → Graph →
// Document"). A whole-extractor failure is logged and appended to
// result.Errors; subsequent extractors still run against whatever the
// earlier ones managed to store.
func (o *Orchestrator) runExtraction(ctx context.Context, s store.Store, repoRoot string, cfg *config.Config, result *PipelineResult) {
	for _, e := range o.extractors {
		stats, err := e.Extract(ctx, s, repoRoot, cfg)
		if err != nil {
			o.logger.WithError(err).WithField("extractor", e.Name()).Warn("extractor failed")
			result.Errors = append(result.Errors, homererrors.PipelineError{Stage: e.Name(), Message: err.Error()})
			continue
		}
		if stats == nil {
			continue
		}
		result.ExtractNodes += stats.NodesCreated + stats.NodesUpdated
		result.ExtractEdges += stats.EdgesCreated
		for _, fe := range stats.Errors {
			o.logger.WithField("extractor", e.Name()).WithField("path", fe.Path).WithError(fe.Err).Debug("file-level extraction error")
		}
	}
}

// runAnalysis drives phase 2 (spec §4.7: "Behavioral → Centrality →
// Community (+ optional Semantic after Centrality)"). An analyzer
// whose Requires() is unmet reports InsufficientData and is skipped
// without being treated as a run failure; NeedsRerun similarly lets an
// analyzer decline without penalty.
func (o *Orchestrator) runAnalysis(ctx context.Context, s store.Store, cfg *config.Config, result *PipelineResult) {
	for _, a := range o.analyzers {
		if missing := unmetRequirements(ctx, s, a.Requires()); len(missing) > 0 {
			o.logger.WithField("analyzer", a.Name()).WithField("missing", missing).Info("insufficient data, skipping")
			continue
		}
		rerun, err := a.NeedsRerun(ctx, s)
		if err != nil {
			o.logger.WithError(err).WithField("analyzer", a.Name()).Warn("NeedsRerun check failed")
			result.Errors = append(result.Errors, homererrors.PipelineError{Stage: a.Name(), Message: err.Error()})
			continue
		}
		if !rerun {
			o.logger.WithField("analyzer", a.Name()).Debug("no new inputs, skipping")
			continue
		}

		stats, err := a.Analyze(ctx, s, cfg)
		if err != nil {
			o.logger.WithError(err).WithField("analyzer", a.Name()).Warn("analyzer failed")
			result.Errors = append(result.Errors, homererrors.PipelineError{Stage: a.Name(), Message: err.Error()})
			continue
		}
		if stats == nil {
			continue
		}
		result.AnalysisResults += stats.ResultsStored
		for _, ne := range stats.Errors {
			o.logger.WithField("analyzer", a.Name()).WithField("node", ne.Node).WithError(ne.Err).Debug("node-level analysis error")
		}
	}
}

// unmetRequirements returns the subset of requires not yet present as
// at least one stored AnalysisResult.
func unmetRequirements(ctx context.Context, s store.Store, requires []string) []string {
	var missing []string
	for _, kind := range requires {
		results, err := s.GetAnalysesByKind(ctx, kind)
		if err != nil || len(results) == 0 {
			missing = append(missing, kind)
		}
	}
	return missing
}

// runRendering drives phase 3 (spec §4.7: "order irrelevant; all run
// independently"), delegating to render.WriteEnabled for the
// config-selected renderer set.
func (o *Orchestrator) runRendering(ctx context.Context, s store.Store, cfg *config.Config, repoRoot string, result *PipelineResult) {
	written, errs := render.WriteEnabled(ctx, s, cfg, repoRoot)
	result.ArtifactsWritten += len(written)
	for _, err := range errs {
		o.logger.WithError(err).Warn("renderer failed")
		result.Errors = append(result.Errors, homererrors.PipelineError{Stage: "render", Message: err.Error()})
	}
}

package main

import (
	"context"
	"os"

	"github.com/rand/homer-sub001/internal/langsupport"
	"github.com/rand/homer-sub001/internal/llm"
	"github.com/rand/homer-sub001/internal/pipeline"
)

// buildProvider selects an LLM provider per --no-llm and the
// configured api key environment variable. With --no-llm or no key set
// it returns a NullProvider, so the Semantic analyzer stores only
// doc-comment-derived summaries and skips the LLM step instead of
// failing the run.
func buildProvider(noLLM bool) llm.Provider {
	if noLLM {
		return llm.NewNullProvider()
	}
	apiKey := os.Getenv(cfg.LLM.APIKeyEnv)
	if apiKey == "" {
		return llm.NewNullProvider()
	}
	return llm.NewOpenAIProvider(apiKey, cfg.LLM.Model, cfg.LLM.BaseURL)
}

// runPipeline opens the store at repoRoot, runs the orchestrator with
// the given force mode, and closes the store before returning.
func runPipeline(ctx context.Context, repoRoot string, force pipeline.ForceMode, noLLM bool) (*pipeline.PipelineResult, error) {
	s, err := openStore(repoRoot)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	orch := pipeline.NewOrchestrator(langsupport.NewRegistry(), buildProvider(noLLM), logger)
	return orch.Run(ctx, s, repoRoot, cfg, force)
}

func printPipelineResult(result *pipeline.PipelineResult) {
	Header("Homer run complete")
	Infof("nodes extracted: %s", CountText(result.ExtractNodes))
	Infof("edges extracted: %s", CountText(result.ExtractEdges))
	Infof("analyses computed: %s", CountText(result.AnalysisResults))
	Infof("artifacts written: %s", CountText(result.ArtifactsWritten))
	Infof("duration: %s", result.Duration)
	if len(result.Errors) > 0 {
		Warningf("%d error(s) during run:", len(result.Errors))
		for i, e := range result.Errors {
			if i >= 10 {
				Warningf("... and %d more", len(result.Errors)-10)
				break
			}
			Warningf("  [%s] %s", e.Stage, e.Message)
		}
	} else {
		Success("no errors")
	}
}

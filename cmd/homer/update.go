package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/pipeline"
)

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Re-run extraction, analysis and rendering against an existing database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().Bool("force", false, "clear checkpoints and analyses, reprocessing everything")
	updateCmd.Flags().Bool("force-analysis", false, "clear analyses only, reprocessing from the existing extraction state")
	updateCmd.Flags().Bool("force-semantic", false, "clear only semantic-summary analyses")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(args)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	forceAnalysis, _ := cmd.Flags().GetBool("force-analysis")
	forceSemantic, _ := cmd.Flags().GetBool("force-semantic")

	mode := pipeline.ForceNone
	switch {
	case force:
		mode = pipeline.Force
	case forceAnalysis:
		mode = pipeline.ForceAnalysis
	case forceSemantic:
		mode = pipeline.ForceSemantic
	}

	Infof("updating homer database at %s", repoRoot)
	result, err := runPipeline(context.Background(), repoRoot, mode, false)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	printPipelineResult(result)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/pipeline"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Build the hypergraph database for a repository for the first time",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("depth", "standard", "extraction depth: shallow, standard, deep, full")
	initCmd.Flags().Bool("no-github", false, "skip GitHub-derived metadata (pull requests, issues)")
	initCmd.Flags().Bool("no-llm", false, "skip semantic analysis even if an LLM key is configured")
	initCmd.Flags().String("languages", "", "comma-separated language allowlist, overriding extraction.languages")
	initCmd.Flags().String("db-path", "", "override the database path for this run")
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(args)
	if err != nil {
		return err
	}

	if languages, _ := cmd.Flags().GetString("languages"); languages != "" {
		cfg.Extraction.Languages = strings.Split(languages, ",")
	}
	if db, _ := cmd.Flags().GetString("db-path"); db != "" {
		cfg.DBPath = db
	}
	noLLM, _ := cmd.Flags().GetBool("no-llm")

	if _, err := os.Stat(dbPath(repoRoot, cfg)); err == nil {
		Warning("database already exists; run 'homer update' to refresh it")
	}

	Infof("initializing homer at %s", repoRoot)
	result, err := runPipeline(context.Background(), repoRoot, pipeline.Force, noLLM)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	printPipelineResult(result)
	return nil
}

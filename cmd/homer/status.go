package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show database presence, size, node count, last extracted commit and snapshot count",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(args)
	if err != nil {
		return err
	}

	path := dbPath(repoRoot, cfg)
	Header("Homer Status")
	Infof("database: %s", DimText(path))

	info, err := os.Stat(path)
	if err != nil {
		Warning("not initialized (run 'homer init')")
		return nil
	}
	Successf("initialized, size %d bytes", info.Size())

	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	nodes, err := s.FindNodes(ctx, models.NodeFilter{})
	if err != nil {
		return fmt.Errorf("count nodes: %w", err)
	}
	Infof("nodes: %s", CountText(len(nodes)))

	sha, ok, err := s.GetCheckpoint(ctx, "git_last_sha")
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}
	if ok {
		Infof("last extracted commit: %s", sha)
	} else {
		Infof("last extracted commit: %s", DimText("none"))
	}

	snaps, err := s.ListSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	Infof("snapshots: %s", CountText(len(snaps)))

	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Create, list or delete named snapshots for longitudinal comparison",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create LABEL",
	Short: "Capture the current node/edge counts under a label",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotCreate,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List existing snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete LABEL",
	Short: "Delete a snapshot by label",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotListCmd, snapshotDeleteCmd)
}

func runSnapshotCreate(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(nil)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.CreateSnapshot(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	Successf("created snapshot %q (id %d)", args[0], id)
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(nil)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	snaps, err := s.ListSnapshots(context.Background())
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		Info("no snapshots")
		return nil
	}
	Header("Snapshots")
	for _, snap := range snaps {
		Infof("%-20s %s  nodes=%d edges=%d", snap.Label, snap.SnapshotAt.Format("2006-01-02 15:04:05"), snap.NodeCount, snap.EdgeCount)
	}
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(nil)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	deleted, err := s.DeleteSnapshot(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if !deleted {
		return fmt.Errorf("no snapshot named %q", args[0])
	}
	Successf("deleted snapshot %q", args[0])
	return nil
}

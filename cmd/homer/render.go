package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [path]",
	Short: "Write AGENTS.md, module context files and the risk map from the current database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("format", "", "comma-separated renderer names to run, overriding renderers.enabled")
	renderCmd.Flags().Bool("all", false, "run every known renderer regardless of config")
	renderCmd.Flags().String("exclude", "", "comma-separated renderer names to skip")
}

func runRender(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(args)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	runCfg := *cfg
	if names, _ := cmd.Flags().GetString("format"); names != "" {
		runCfg.Renderers.Enabled = strings.Split(names, ",")
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		names := make([]string, 0, len(render.Registry())+1)
		for name := range render.Registry() {
			names = append(names, name)
		}
		names = append(names, "module_context")
		runCfg.Renderers.Enabled = names
	}
	if exclude, _ := cmd.Flags().GetString("exclude"); exclude != "" {
		excluded := map[string]bool{}
		for _, name := range strings.Split(exclude, ",") {
			excluded[strings.TrimSpace(name)] = true
		}
		var kept []string
		for _, name := range runCfg.Renderers.Enabled {
			if !excluded[name] {
				kept = append(kept, name)
			}
		}
		runCfg.Renderers.Enabled = kept
	}

	written, errs := render.WriteEnabled(context.Background(), s, &runCfg, repoRoot)
	for _, path := range written {
		Successf("wrote %s", path)
	}
	for _, e := range errs {
		Errorln(e.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d renderer(s) failed", len(errs))
	}
	return nil
}

package render

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// AgentsRenderer produces AGENTS.md's five required sections (spec
// §4.6): Build & Test Commands, Module Map, Change Patterns,
// Conventions, Load-Bearing Code.
type AgentsRenderer struct{}

func NewAgentsRenderer() *AgentsRenderer { return &AgentsRenderer{} }

func (r *AgentsRenderer) Name() string       { return "agents_md" }
func (r *AgentsRenderer) OutputPath() string { return "AGENTS.md" }

func (r *AgentsRenderer) Render(ctx context.Context, s store.Store, cfg *config.Config) (string, error) {
	var b strings.Builder
	b.WriteString("# AGENTS.md\n\n")
	b.WriteString("Generated by homer. Human edits inside `<!-- homer:preserve -->` blocks survive re-generation.\n\n")

	if err := writeBuildCommands(ctx, &b, s, cfg); err != nil {
		return "", homererrors.RenderError(err, "render Build & Test Commands")
	}
	if err := writeModuleMap(ctx, &b, s); err != nil {
		return "", homererrors.RenderError(err, "render Module Map")
	}
	if err := writeChangePatterns(ctx, &b, s); err != nil {
		return "", homererrors.RenderError(err, "render Change Patterns")
	}
	if err := writeConventions(ctx, &b, s); err != nil {
		return "", homererrors.RenderError(err, "render Conventions")
	}
	if err := writeLoadBearing(ctx, &b, s); err != nil {
		return "", homererrors.RenderError(err, "render Load-Bearing Code")
	}

	return b.String(), nil
}

// manifestBuildCommands is the fallback inference table used when
// config.Renderers.BuildCommands is empty (spec §4.6: "Content is
// pulled from config (build commands)").
var manifestBuildCommands = map[string]map[string]string{
	"go.mod":         {"build": "go build ./...", "test": "go test ./..."},
	"Cargo.toml":     {"build": "cargo build", "test": "cargo test"},
	"package.json":   {"build": "npm run build", "test": "npm test"},
	"pyproject.toml": {"test": "pytest"},
	"pom.xml":        {"build": "mvn package", "test": "mvn test"},
	"build.gradle":   {"build": "gradle build", "test": "gradle test"},
}

func writeBuildCommands(ctx context.Context, b *strings.Builder, s store.Store, cfg *config.Config) error {
	b.WriteString("## Build & Test Commands\n\n")

	if len(cfg.Renderers.BuildCommands) > 0 {
		labels := make([]string, 0, len(cfg.Renderers.BuildCommands))
		for label := range cfg.Renderers.BuildCommands {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(b, "- **%s**: `%s`\n", label, cfg.Renderers.BuildCommands[label])
		}
		b.WriteString("\n")
		return nil
	}

	files, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	var labels []string
	commands := map[string]string{}
	for _, f := range files {
		base := f.Name
		if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
			base = base[idx+1:]
		}
		table, ok := manifestBuildCommands[base]
		if !ok {
			continue
		}
		for label, cmd := range table {
			if seen[label] {
				continue
			}
			seen[label] = true
			labels = append(labels, label)
			commands[label] = cmd
		}
	}
	if len(labels) == 0 {
		b.WriteString("No build manifest detected.\n\n")
		return nil
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(b, "- **%s**: `%s`\n", label, commands[label])
	}
	b.WriteString("\n")
	return nil
}

func writeModuleMap(ctx context.Context, b *strings.Builder, s store.Store) error {
	b.WriteString("## Module Map\n\n")

	modules, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeModule})
	if err != nil {
		return err
	}
	root := store.FindRootModule(modules)
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		depth := strings.Count(name, "/")
		if root != nil && name == root.Name {
			depth = 0
		}
		fmt.Fprintf(b, "%s- `%s`\n", strings.Repeat("  ", depth), name)
	}
	b.WriteString("\n")
	return nil
}

func writeChangePatterns(ctx context.Context, b *strings.Builder, s store.Store) error {
	b.WriteString("## Change Patterns\n\n")

	freqResults, err := s.GetAnalysesByKind(ctx, models.AnalysisChangeFrequency)
	if err != nil {
		return err
	}
	sort.SliceStable(freqResults, func(i, j int) bool {
		ti, _ := asIntValue(freqResults[i].Data["total"])
		tj, _ := asIntValue(freqResults[j].Data["total"])
		return ti > tj
	})
	b.WriteString("Most-frequently-changed files:\n\n")
	for i, res := range freqResults {
		if i >= 10 {
			break
		}
		node, err := s.GetNode(ctx, res.NodeID)
		if err != nil {
			continue
		}
		total, _ := asIntValue(res.Data["total"])
		fmt.Fprintf(b, "- `%s` (%d commits)\n", node.Name, total)
	}
	b.WriteString("\n")

	coChanges, err := s.GetEdgesByKind(ctx, models.EdgeCoChanges)
	if err != nil {
		return err
	}
	sort.SliceStable(coChanges, func(i, j int) bool {
		ci, _ := asIntValue(coChanges[i].Metadata["co_occurrences"])
		cj, _ := asIntValue(coChanges[j].Metadata["co_occurrences"])
		return ci > cj
	})
	if len(coChanges) > 0 {
		b.WriteString("Files that tend to change together:\n\n")
		for i, edge := range coChanges {
			if i >= 10 || len(edge.Members) < 2 {
				break
			}
			a, errA := s.GetNode(ctx, edge.Members[0].NodeID)
			c, errC := s.GetNode(ctx, edge.Members[1].NodeID)
			if errA != nil || errC != nil {
				continue
			}
			count, _ := asIntValue(edge.Metadata["co_occurrences"])
			fmt.Fprintf(b, "- `%s` + `%s` (%d shared commits)\n", a.Name, c.Name, count)
		}
		b.WriteString("\n")
	}
	return nil
}

func writeConventions(ctx context.Context, b *strings.Builder, s store.Store) error {
	b.WriteString("## Conventions\n\n")

	counts := map[string]int{}
	for _, kind := range []models.NodeKind{models.NodeFunction, models.NodeType} {
		nodes, err := s.FindNodes(ctx, models.NodeFilter{Kind: kind})
		if err != nil {
			return err
		}
		for _, n := range nodes {
			style, ok := n.Metadata["doc_style"].(string)
			if !ok || style == "" {
				continue
			}
			counts[style]++
		}
	}
	if len(counts) == 0 {
		b.WriteString("No documentation convention detected yet.\n\n")
		return nil
	}
	styles := make([]string, 0, len(counts))
	for style := range counts {
		styles = append(styles, style)
	}
	sort.Slice(styles, func(i, j int) bool { return counts[styles[i]] > counts[styles[j]] })
	for _, style := range styles {
		fmt.Fprintf(b, "- %s: %d documented entities\n", style, counts[style])
	}
	b.WriteString("\n")
	return nil
}

func writeLoadBearing(ctx context.Context, b *strings.Builder, s store.Store) error {
	b.WriteString("## Load-Bearing Code\n\n")

	results, err := s.GetAnalysesByKind(ctx, models.AnalysisCompositeSalience)
	if err != nil {
		return err
	}
	sort.SliceStable(results, func(i, j int) bool {
		si, _ := results[i].Data["score"].(float64)
		sj, _ := results[j].Data["score"].(float64)
		return si > sj
	})
	for i, res := range results {
		if i >= 10 {
			break
		}
		node, err := s.GetNode(ctx, res.NodeID)
		if err != nil {
			continue
		}
		score, _ := res.Data["score"].(float64)
		cls, _ := res.Data["classification"].(string)
		fmt.Fprintf(b, "- `%s` — score %.2f (%s)\n", node.Name, score, cls)
	}
	b.WriteString("\n")
	return nil
}

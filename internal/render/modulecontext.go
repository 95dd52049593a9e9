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

// ModuleContextRenderer produces one `<module>/.context.md` per
// Module node (spec §4.6): module-local entity summaries, change
// profile, top internal dependencies. Unlike AgentsRenderer/
// RiskMapRenderer it has no single OutputPath, so it does not satisfy
// Renderer; WriteModuleContexts drives it directly.
type ModuleContextRenderer struct{}

func NewModuleContextRenderer() *ModuleContextRenderer { return &ModuleContextRenderer{} }

func (r *ModuleContextRenderer) Name() string { return "module_context" }

// WriteModuleContexts renders and writes a `.context.md` file for
// every Module node, returning the absolute paths written.
func WriteModuleContexts(ctx context.Context, s store.Store, cfg *config.Config, repoRoot string) ([]string, error) {
	modules, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeModule})
	if err != nil {
		return nil, homererrors.RenderError(err, "list modules")
	}

	filesByModule, err := groupFilesByModule(ctx, s)
	if err != nil {
		return nil, err
	}

	root := store.FindRootModule(modules)
	var written []string
	for _, module := range modules {
		content, err := renderModuleContext(ctx, s, module, filesByModule[module.ID])
		if err != nil {
			return written, homererrors.RenderError(err, "render module context").WithContext("module", module.Name)
		}
		outputPath := moduleContextPath(module, root)
		path, err := writeWithPreserve(ctx, repoRoot, outputPath, content)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// moduleContextPath places the root module's context file directly at
// the repo root (".context.md") and every other module's at
// "<module>/.context.md"; root is identified via FindRootModule rather
// than a literal name comparison.
func moduleContextPath(module, root *models.Node) string {
	if root != nil && module.ID == root.ID {
		return ".context.md"
	}
	return module.Name + "/.context.md"
}

// groupFilesByModule maps each Module node ID to the File nodes whose
// BelongsTo edge names it as container.
func groupFilesByModule(ctx context.Context, s store.Store) (map[models.NodeID][]*models.Node, error) {
	edges, err := s.GetEdgesByKind(ctx, models.EdgeBelongsTo)
	if err != nil {
		return nil, err
	}
	out := map[models.NodeID][]*models.Node{}
	for _, edge := range edges {
		if len(edge.Members) < 2 {
			continue
		}
		memberNode, err := s.GetNode(ctx, edge.Members[0].NodeID)
		if err != nil || memberNode.Kind != models.NodeFile {
			continue
		}
		containerID := edge.Members[1].NodeID
		out[containerID] = append(out[containerID], memberNode)
	}
	return out, nil
}

func renderModuleContext(ctx context.Context, s store.Store, module *models.Node, files []*models.Node) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Module: %s\n\n", module.Name)

	if err := writeEntitySummary(ctx, &b, s, files); err != nil {
		return "", err
	}
	if err := writeModuleChangeProfile(ctx, &b, s, files); err != nil {
		return "", err
	}
	if err := writeInternalDependencies(ctx, &b, s, module, files); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeEntitySummary(ctx context.Context, b *strings.Builder, s store.Store, files []*models.Node) error {
	b.WriteString("## Entities\n\n")
	fmt.Fprintf(b, "- Files: %d\n", len(files))

	functions, types := 0, 0
	for _, f := range files {
		edges, err := s.GetEdgesInvolving(ctx, f.ID)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if edge.Kind != models.EdgeBelongsTo || len(edge.Members) < 2 || edge.Members[1].NodeID != f.ID {
				continue
			}
			defNode, err := s.GetNode(ctx, edge.Members[0].NodeID)
			if err != nil {
				continue
			}
			switch defNode.Kind {
			case models.NodeFunction:
				functions++
			case models.NodeType:
				types++
			}
		}
	}
	fmt.Fprintf(b, "- Functions: %d\n", functions)
	fmt.Fprintf(b, "- Types: %d\n\n", types)
	return nil
}

func writeModuleChangeProfile(ctx context.Context, b *strings.Builder, s store.Store, files []*models.Node) error {
	b.WriteString("## Change Profile\n\n")
	total := 0
	for _, f := range files {
		res, err := s.GetAnalysis(ctx, f.ID, models.AnalysisChangeFrequency)
		if err != nil {
			continue
		}
		n, _ := asIntValue(res.Data["total"])
		total += n
	}
	fmt.Fprintf(b, "- Total recorded commits across module files: %d\n\n", total)
	return nil
}

func writeInternalDependencies(ctx context.Context, b *strings.Builder, s store.Store, module *models.Node, files []*models.Node) error {
	b.WriteString("## Top Internal Dependencies\n\n")

	counts := map[models.NodeID]int{}
	for _, f := range files {
		edges, err := s.GetEdgesInvolving(ctx, f.ID)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if edge.Kind != models.EdgeImports || len(edge.Members) < 2 {
				continue
			}
			targetID := edge.Members[1].NodeID
			targetModule, err := moduleOfFile(ctx, s, targetID)
			if err != nil || targetModule == 0 || targetModule == module.ID {
				continue
			}
			counts[targetModule]++
		}
	}
	if len(counts) == 0 {
		b.WriteString("No cross-module dependencies detected.\n\n")
		return nil
	}
	ids := make([]models.NodeID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return counts[ids[i]] > counts[ids[j]] })
	for i, id := range ids {
		if i >= 5 {
			break
		}
		target, err := s.GetNode(ctx, id)
		if err != nil {
			continue
		}
		fmt.Fprintf(b, "- `%s` (%d imports)\n", target.Name, counts[id])
	}
	b.WriteString("\n")
	return nil
}

func moduleOfFile(ctx context.Context, s store.Store, fileID models.NodeID) (models.NodeID, error) {
	edges, err := s.GetEdgesInvolving(ctx, fileID)
	if err != nil {
		return 0, err
	}
	for _, edge := range edges {
		if edge.Kind != models.EdgeBelongsTo || len(edge.Members) < 2 || edge.Members[0].NodeID != fileID {
			continue
		}
		return edge.Members[1].NodeID, nil
	}
	return 0, nil
}

package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/langsupport"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/scopegraph"
	"github.com/rand/homer-sub001/internal/store"

	"github.com/rand/homer-sub001/internal/config"
)

// GraphExtractor parses every enabled-language File node with
// internal/langsupport and resolves cross-file calls/imports with
// internal/scopegraph's heuristic resolver, file-scoping definition
// names as spec §4.3/§4.4 require.
type GraphExtractor struct {
	registry *langsupport.Registry
}

func NewGraphExtractor(registry *langsupport.Registry) *GraphExtractor {
	return &GraphExtractor{registry: registry}
}

func (e *GraphExtractor) Name() string { return "graph" }

func scopedName(file, qualifiedName string) string {
	return fmt.Sprintf("%s::%s", file, qualifiedName)
}

func (e *GraphExtractor) Extract(ctx context.Context, s store.Store, repoRoot string, cfg *config.Config) (*ExtractStats, error) {
	start := time.Now()
	stats := &ExtractStats{}

	enabled := make(map[string]bool, len(cfg.Extraction.Languages))
	for _, l := range cfg.Extraction.Languages {
		enabled[l] = true
	}

	files, err := s.FindNodes(ctx, models.NodeFilter{Kind: models.NodeFile})
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.GraphError(err, "list file nodes")
	}

	var graphs []*langsupport.HeuristicGraph
	fileIDByPath := make(map[string]models.NodeID, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			break
		}
		lang, _ := f.Metadata["language"].(string)
		if !enabled[lang] {
			continue
		}
		fileIDByPath[f.Name] = f.ID

		support := e.registry.Get(lang)
		if support == nil || support.Tier() == langsupport.TierUnsupported {
			continue
		}

		absPath := filepath.Join(repoRoot, filepath.FromSlash(f.Name))
		data, rerr := os.ReadFile(absPath)
		if rerr != nil {
			stats.recordError(f.Name, homererrors.GraphError(rerr, "read file"))
			continue
		}

		hg, perr := support.Extract(f.Name, data)
		if perr != nil {
			stats.recordError(f.Name, homererrors.ParseError(f.Name, perr))
			continue
		}
		graphs = append(graphs, hg)

		if err := e.upsertDefinitions(ctx, s, hg, f.ID, stats); err != nil {
			stats.recordError(f.Name, err)
		}
	}

	resolver := scopegraph.NewHeuristicResolver(graphs)

	for _, call := range resolver.ResolveCalls(graphs) {
		if err := e.upsertCall(ctx, s, call, stats); err != nil {
			stats.recordError(call.CallerFile, err)
		}
	}

	// One Imports(file) edge per raw import statement, per spec §4.4's
	// {imported_name, target_path?} contract; the scope-graph resolver
	// fills target_path whenever the import resolves to an in-repo
	// file (the expanded cross-file-aware heuristic tier), leaving it
	// absent for external packages.
	for _, hg := range graphs {
		for _, imp := range hg.Imports {
			if err := e.upsertImport(ctx, s, resolver, hg.FilePath, imp, fileIDByPath, stats); err != nil {
				stats.recordError(hg.FilePath, err)
			}
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (e *GraphExtractor) upsertDefinitions(ctx context.Context, s store.Store, hg *langsupport.HeuristicGraph, fileID models.NodeID, stats *ExtractStats) *homererrors.HomerError {
	for _, def := range hg.Definitions {
		kind := models.NodeFunction
		if def.Kind == langsupport.SymbolType {
			kind = models.NodeType
		}
		metadata := map[string]any{
			"file":           hg.FilePath,
			"qualified_name": def.QualifiedName,
			"span":           map[string]any{"start_line": def.Span.StartLine, "end_line": def.Span.EndLine},
		}
		if def.Doc != nil {
			metadata["doc_comment"] = def.Doc.Text
			metadata["doc_style"] = string(def.Doc.Style)
		}

		node := &models.Node{
			Kind:     kind,
			Name:     scopedName(hg.FilePath, def.QualifiedName),
			Metadata: metadata,
		}
		existing, _ := s.GetNodeByName(ctx, kind, node.Name)
		id, err := s.UpsertNode(ctx, node)
		if err != nil {
			return homererrors.GraphError(err, "upsert definition node").WithContext("name", node.Name)
		}
		stats.recordNode(true, existing != nil)

		if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
			Kind: models.EdgeBelongsTo,
			Members: []models.Member{
				{NodeID: id, Role: models.RoleMember, Position: 0},
				{NodeID: fileID, Role: models.RoleContainer, Position: 1},
			},
			Confidence: 1.0,
		}); err != nil {
			return homererrors.GraphError(err, "upsert definition BelongsTo edge").WithContext("name", node.Name)
		}
		stats.EdgesCreated++
	}
	return nil
}

func (e *GraphExtractor) upsertCall(ctx context.Context, s store.Store, call scopegraph.CallEdge, stats *ExtractStats) *homererrors.HomerError {
	callerName := scopedName(call.CallerFile, call.CallerName)
	calleeName := scopedName(call.CalleeFile, call.CalleeQualifiedName)

	caller, err := findFunctionOrType(ctx, s, callerName)
	if err != nil {
		return homererrors.GraphError(err, "lookup caller node").WithContext("name", callerName)
	}
	callee, err := findFunctionOrType(ctx, s, calleeName)
	if err != nil {
		return homererrors.GraphError(err, "lookup callee node").WithContext("name", calleeName)
	}
	if caller == nil || callee == nil {
		// Unresolved endpoint: not stored, per spec §4.4.
		return nil
	}

	kind, callerRole, calleeRole, metadata := scopegraph.CallHyperedge(call)
	if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
		Kind: kind,
		Members: []models.Member{
			{NodeID: caller.ID, Role: callerRole, Position: 0},
			{NodeID: callee.ID, Role: calleeRole, Position: 1},
		},
		Confidence: call.Confidence,
		Metadata:   metadata,
	}); err != nil {
		return homererrors.GraphError(err, "upsert Calls edge")
	}
	stats.EdgesCreated++
	return nil
}

func findFunctionOrType(ctx context.Context, s store.Store, name string) (*models.Node, error) {
	if n, err := s.GetNodeByName(ctx, models.NodeFunction, name); err == nil {
		return n, nil
	} else if err != store.ErrNotFound {
		return nil, err
	}
	n, err := s.GetNodeByName(ctx, models.NodeType, name)
	if err == store.ErrNotFound {
		return nil, nil
	}
	return n, err
}

// upsertImport records one raw import statement as an Imports(file)
// edge, filling target_path when the scope-graph resolver can map the
// imported name to an in-repo file and adding the target as a second
// member so downstream analyzers can build the file-level import
// graph without re-parsing metadata.
func (e *GraphExtractor) upsertImport(ctx context.Context, s store.Store, resolver *scopegraph.HeuristicResolver, sourceFile string, imp langsupport.Import, fileIDByPath map[string]models.NodeID, stats *ExtractStats) *homererrors.HomerError {
	sourceID, ok := fileIDByPath[sourceFile]
	if !ok {
		return nil
	}

	metadata := map[string]any{"imported_name": imp.ImportedName}
	members := []models.Member{{NodeID: sourceID, Role: models.RoleImporter, Position: 0}}

	if target, ok := resolver.ResolveImportTarget(imp.ImportedName); ok && target != sourceFile {
		if targetID, ok := fileIDByPath[target]; ok {
			metadata["target_path"] = target
			members = append(members, models.Member{NodeID: targetID, Role: models.RoleImported, Position: 1})
		}
	}

	if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
		Kind:       models.EdgeImports,
		Members:    members,
		Confidence: imp.Confidence,
		Metadata:   metadata,
	}); err != nil {
		return homererrors.GraphError(err, "upsert Imports edge").WithContext("import", imp.ImportedName)
	}
	stats.EdgesCreated++
	return nil
}

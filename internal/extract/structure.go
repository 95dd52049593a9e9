package extract

import (
	"bytes"
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/langsupport"
	"github.com/rand/homer-sub001/internal/models"
	"github.com/rand/homer-sub001/internal/store"
)

// rootModuleName is the canonical name of the repo-root Module node,
// per spec §4.4 ("the root module has ... name = \".\"").
const rootModuleName = "."

// StructureExtractor walks the working tree, skipping ignored paths,
// producing File/Module/ExternalDep nodes and their BelongsTo/DependsOn
// edges. Grounded on the teacher's internal/ingestion walk-and-filter
// pattern, generalized from CodeRisk's single-purpose repo scan to
// Homer's three node kinds.
type StructureExtractor struct {
	registry *langsupport.Registry
}

func NewStructureExtractor(registry *langsupport.Registry) *StructureExtractor {
	return &StructureExtractor{registry: registry}
}

func (e *StructureExtractor) Name() string { return "structure" }

func (e *StructureExtractor) Extract(ctx context.Context, s store.Store, repoRoot string, cfg *config.Config) (*ExtractStats, error) {
	start := time.Now()
	stats := &ExtractStats{}

	ignore, err := compileIgnore(cfg.Extraction.Structure.ExcludePatterns)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.ExtractError(err, "compile ignore patterns")
	}

	moduleDirs := map[string]bool{rootModuleName: true}
	manifests := make(map[string]string) // repo-relative manifest path -> owning module

	err = filepath.Walk(repoRoot, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if ignore.MatchesPath(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			moduleDirs[rel] = true
			return nil
		}

		if perr := e.extractFile(ctx, s, rel, path, info, stats); perr != nil {
			stats.recordError(rel, perr)
		}
		if isManifest(filepath.Base(rel)) {
			manifests[rel] = moduleNameForDir(filepath.ToSlash(filepath.Dir(rel)))
		}
		moduleDirs[moduleNameForDir(filepath.ToSlash(filepath.Dir(rel)))] = true
		return nil
	})
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, homererrors.ExtractError(err, "walk working tree")
	}

	if err := e.upsertModules(ctx, s, moduleDirs, stats); err != nil {
		stats.Duration = time.Since(start)
		return stats, err
	}

	for manifestRel, moduleName := range manifests {
		if perr := e.extractManifest(ctx, s, repoRoot, manifestRel, moduleName, stats); perr != nil {
			stats.recordError(manifestRel, perr)
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func compileIgnore(patterns []string) (*gitignore.GitIgnore, error) {
	return gitignore.CompileIgnoreLines(patterns...)
}

func moduleNameForDir(dir string) string {
	if dir == "" || dir == "." {
		return rootModuleName
	}
	return dir
}

func (e *StructureExtractor) extractFile(ctx context.Context, s store.Store, rel, absPath string, info os.FileInfo, stats *ExtractStats) *homererrors.HomerError {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return homererrors.ExtractError(err, "read file")
	}

	hash := fnv1a64(data)
	lang := e.registry.ForFile(rel)
	node := &models.Node{
		Kind:        models.NodeFile,
		Name:        rel,
		ContentHash: &hash,
		Metadata: map[string]any{
			"language":    lang.ID(),
			"size_bytes":  info.Size(),
			"line_count":  bytes.Count(data, []byte("\n")) + 1,
		},
	}
	id, changed, err := store.UpsertIfChanged(ctx, s, node)
	if err != nil {
		return homererrors.ExtractError(err, "upsert_if_changed file node")
	}
	existing, _ := s.GetNodeByName(ctx, models.NodeFile, rel)
	stats.recordNode(changed, existing != nil && !changed)
	if changed {
		if _, err := store.InvalidateDependents(ctx, s, id); err != nil {
			return homererrors.ExtractError(err, "invalidate dependents")
		}
	}

	moduleName := moduleNameForDir(filepath.ToSlash(filepath.Dir(rel)))
	if err := e.belongsTo(ctx, s, models.NodeFile, rel, moduleName, stats); err != nil {
		return err
	}
	return nil
}

// upsertModules creates a Module node per directory seen during the
// walk, plus one BelongsTo edge per directory linking it to its
// parent, building the module hierarchy top-down: names are visited in
// sorted order, so a parent's Module node exists before its children
// link to it.
func (e *StructureExtractor) upsertModules(ctx context.Context, s store.Store, dirs map[string]bool, stats *ExtractStats) *homererrors.HomerError {
	names := make([]string, 0, len(dirs))
	for d := range dirs {
		names = append(names, d)
	}
	sort.Strings(names)

	for _, name := range names {
		node := &models.Node{
			Kind: models.NodeModule,
			Name: name,
		}
		if name == rootModuleName {
			node.Metadata = map[string]any{"is_root": true}
		}
		existing, _ := s.GetNodeByName(ctx, models.NodeModule, name)
		_, err := s.UpsertNode(ctx, node)
		if err != nil {
			return homererrors.ExtractError(err, "upsert module node").WithContext("module", name)
		}
		stats.recordNode(true, existing != nil)

		if name == rootModuleName {
			continue
		}
		parent := moduleNameForDir(filepath.ToSlash(filepath.Dir(name)))
		if err := e.belongsTo(ctx, s, models.NodeModule, name, parent, stats); err != nil {
			return err
		}
	}
	return nil
}

// belongsTo emits a BelongsTo edge from the named member node to the
// named container module, creating the container module first if it
// is missing (File edges are emitted during the walk, before
// upsertModules creates the directory modules).
func (e *StructureExtractor) belongsTo(ctx context.Context, s store.Store, memberKind models.NodeKind, memberName, moduleName string, stats *ExtractStats) *homererrors.HomerError {
	memberNode, err := s.GetNodeByName(ctx, memberKind, memberName)
	if err != nil {
		return homererrors.ExtractError(err, "lookup member node").WithContext("name", memberName)
	}
	moduleNode, err := s.GetNodeByName(ctx, models.NodeModule, moduleName)
	if err == store.ErrNotFound {
		created := &models.Node{Kind: models.NodeModule, Name: moduleName}
		if moduleName == rootModuleName {
			created.Metadata = map[string]any{"is_root": true}
		}
		id, uerr := s.UpsertNode(ctx, created)
		if uerr != nil {
			return homererrors.ExtractError(uerr, "upsert module node").WithContext("module", moduleName)
		}
		stats.recordNode(true, false)
		moduleNode, err = &models.Node{ID: id, Kind: models.NodeModule, Name: moduleName}, nil
	}
	if err != nil {
		return homererrors.ExtractError(err, "lookup module node").WithContext("module", moduleName)
	}
	if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
		Kind: models.EdgeBelongsTo,
		Members: []models.Member{
			{NodeID: memberNode.ID, Role: models.RoleMember, Position: 0},
			{NodeID: moduleNode.ID, Role: models.RoleContainer, Position: 1},
		},
		Confidence: 1.0,
	}); err != nil {
		return homererrors.ExtractError(err, "upsert BelongsTo edge")
	}
	stats.EdgesCreated++
	return nil
}

var manifestNames = map[string]bool{
	"Cargo.toml":    true,
	"pyproject.toml": true,
	"package.json":  true,
	"go.mod":        true,
	"pom.xml":       true,
	"build.gradle":  true,
}

func isManifest(base string) bool { return manifestNames[base] }

func (e *StructureExtractor) extractManifest(ctx context.Context, s store.Store, repoRoot, manifestRel, moduleName string, stats *ExtractStats) *homererrors.HomerError {
	absPath := filepath.Join(repoRoot, filepath.FromSlash(manifestRel))
	data, err := os.ReadFile(absPath)
	if err != nil {
		return homererrors.ExtractError(err, "read manifest")
	}

	deps, perr := parseManifest(filepath.Base(manifestRel), data)
	if perr != nil {
		return homererrors.ExtractError(perr, "parse manifest").WithContext("manifest", manifestRel)
	}

	moduleNode, err := s.GetNodeByName(ctx, models.NodeModule, moduleName)
	if err != nil {
		return homererrors.ExtractError(err, "lookup owning module").WithContext("module", moduleName)
	}

	for _, dep := range deps {
		depNode := &models.Node{Kind: models.NodeExternalDep, Name: dep}
		existing, _ := s.GetNodeByName(ctx, models.NodeExternalDep, dep)
		depID, err := s.UpsertNode(ctx, depNode)
		if err != nil {
			return homererrors.ExtractError(err, "upsert ExternalDep node").WithContext("dep", dep)
		}
		stats.recordNode(true, existing != nil)

		if _, err := s.UpsertHyperedge(ctx, &models.Hyperedge{
			Kind: models.EdgeDependsOn,
			Members: []models.Member{
				{NodeID: moduleNode.ID, Role: models.RoleDependent, Position: 0},
				{NodeID: depID, Role: models.RoleDependency, Position: 1},
			},
			Confidence: 1.0,
		}); err != nil {
			return homererrors.ExtractError(err, "upsert DependsOn edge").WithContext("dep", dep)
		}
		stats.EdgesCreated++
	}
	return nil
}

func fnv1a64(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// Package render implements the Renderers (spec §4.6): AGENTS.md,
// per-module context files and the risk map, each assembling content
// from store reads and writing it to disk through a shared
// preserve-block merge, mirroring the teacher's stdout/file report
// generation idiom (internal/clqs.FormatReport) but targeting files
// instead of an io.Writer.
package render

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rand/homer-sub001/internal/config"
	homererrors "github.com/rand/homer-sub001/internal/errors"
	"github.com/rand/homer-sub001/internal/store"
)

// Renderer is the capability every C6 component implements.
type Renderer interface {
	Name() string
	OutputPath() string
	Render(ctx context.Context, s store.Store, cfg *config.Config) (string, error)
}

// Write renders r's content and writes it to repoRoot/r.OutputPath(),
// merging with any existing file's preserve blocks (spec §4.6's
// preservation protocol). Returns the absolute path written.
func Write(ctx context.Context, r Renderer, s store.Store, cfg *config.Config, repoRoot string) (string, error) {
	content, err := r.Render(ctx, s, cfg)
	if err != nil {
		return "", homererrors.RenderError(err, "render "+r.Name())
	}
	return writeWithPreserve(ctx, repoRoot, r.OutputPath(), content)
}

// writeWithPreserve merges content into any existing file at
// repoRoot/relPath and writes the result, creating parent directories
// as needed. Shared by Write and WriteModuleContexts, which has no
// single fixed OutputPath to route through the Renderer interface.
func writeWithPreserve(_ context.Context, repoRoot, relPath, content string) (string, error) {
	outPath := filepath.Join(repoRoot, filepath.FromSlash(relPath))

	existing, err := os.ReadFile(outPath)
	switch {
	case err == nil:
		content = mergeWithPreserve(string(existing), content)
	case os.IsNotExist(err):
		// First write for this path; nothing to merge.
	default:
		return "", homererrors.RenderError(err, "read existing "+relPath)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", homererrors.RenderError(err, "create output directory")
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return "", homererrors.RenderError(err, "write "+relPath)
	}
	return outPath, nil
}

// Registry maps a single-output-path renderer's config-enabled name
// (spec §4.6, config.RenderersConfig.Enabled) to its implementation.
// ModuleContextRenderer is handled separately by WriteEnabled since it
// writes one file per module rather than one fixed OutputPath.
func Registry() map[string]Renderer {
	return map[string]Renderer{
		"agents_md": NewAgentsRenderer(),
		"risk_map":  NewRiskMapRenderer(),
	}
}

// WriteEnabled runs every renderer named in cfg.Renderers.Enabled,
// skipping unknown names rather than failing the whole run — the
// orchestrator's per-component-tolerant style (ExtractStats.Errors,
// AnalyzeStats.Errors) carried into C6.
func WriteEnabled(ctx context.Context, s store.Store, cfg *config.Config, repoRoot string) ([]string, []error) {
	registry := Registry()
	var written []string
	var errs []error
	for _, name := range cfg.Renderers.Enabled {
		if name == "module_context" {
			paths, err := WriteModuleContexts(ctx, s, cfg, repoRoot)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			written = append(written, paths...)
			continue
		}
		r, ok := registry[name]
		if !ok {
			continue
		}
		path, err := Write(ctx, r, s, cfg, repoRoot)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	return written, errs
}

package scopegraph

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/rand/homer-sub001/internal/langsupport"
)

// HeuristicResolver is the heuristic-tier shortcut spec §4.3 describes:
// "the call and import edges are synthesized directly from
// HeuristicGraph without constructing a scope graph." It generalizes
// kraklabs-cie's CallResolver (package index, global function
// registry, file-imports-by-alias map, sequential/parallel threshold)
// from Go-only exported-symbol resolution to the full language roster.
type HeuristicResolver struct {
	// definitionsByFile: file path -> its definitions, for
	// smallest-enclosing-span-free same-file lookups.
	definitionsByFile map[string][]langsupport.Definition

	// definitionsByName: simple name -> candidate files defining it.
	// "Simple name" is the qualified name's last dotted/colon segment.
	definitionsByName map[string][]candidate

	// packageOf: file path -> its containing directory, used as the
	// local "package" identity for qualified-call and import
	// resolution, mirroring CallResolver's packageIndex.
	packageOf map[string]string

	// filesByPackageName: directory basename -> files in that
	// directory, the fallback CallResolver uses when an import alias
	// matches a package name rather than a literal path.
	filesByPackageName map[string][]string

	// importsByFile: file path -> alias -> imported name, grounded on
	// CallResolver's fileImports.
	importsByFile map[string]map[string]string
}

type candidate struct {
	file          string
	qualifiedName string
	kind          langsupport.SymbolKind
}

// NewHeuristicResolver builds the cross-file index from every file's
// HeuristicGraph. Build it once per extraction run, then call
// ResolveCalls/ResolveImports as many times as needed; the index is
// read-only after construction, so concurrent resolution is safe.
func NewHeuristicResolver(graphs []*langsupport.HeuristicGraph) *HeuristicResolver {
	r := &HeuristicResolver{
		definitionsByFile:  make(map[string][]langsupport.Definition),
		definitionsByName:  make(map[string][]candidate),
		packageOf:          make(map[string]string),
		filesByPackageName: make(map[string][]string),
		importsByFile:      make(map[string]map[string]string),
	}

	for _, g := range graphs {
		pkg := filepath.Dir(g.FilePath)
		r.packageOf[g.FilePath] = pkg
		r.filesByPackageName[filepath.Base(pkg)] = append(r.filesByPackageName[filepath.Base(pkg)], g.FilePath)

		r.definitionsByFile[g.FilePath] = g.Definitions
		for _, def := range g.Definitions {
			name := simpleName(def.QualifiedName)
			r.definitionsByName[name] = append(r.definitionsByName[name], candidate{
				file:          g.FilePath,
				qualifiedName: def.QualifiedName,
				kind:          def.Kind,
			})
		}

		aliases := make(map[string]string, len(g.Imports))
		for _, imp := range g.Imports {
			alias := imp.Alias
			if alias == "" {
				alias = filepath.Base(imp.ImportedName)
			}
			aliases[alias] = imp.ImportedName
		}
		r.importsByFile[g.FilePath] = aliases
	}

	return r
}

// simpleName returns the last "::" or "." separated segment of a
// qualified name, the same simplification CallResolver's
// extractSimpleName applies to strip receiver/namespace prefixes.
func simpleName(qualified string) string {
	qualified = strings.ReplaceAll(qualified, "::", ".")
	if idx := strings.LastIndex(qualified, "."); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}

// parallelThreshold mirrors CallResolver.ResolveCalls's 1000-call
// switch between sequential and worker-pool resolution.
const parallelThreshold = 1000

// ResolveCalls turns every file's unresolved Call records into
// CallEdges, per spec §4.3's call-graph projection. The enclosing
// function is already known (langsupport records it as Call.Caller
// during traversal), so no separate smallest-enclosing-span pass is
// needed here.
func (r *HeuristicResolver) ResolveCalls(graphs []*langsupport.HeuristicGraph) []CallEdge {
	type job struct {
		file string
		call langsupport.Call
	}
	var jobs []job
	for _, g := range graphs {
		for _, c := range g.Calls {
			jobs = append(jobs, job{file: g.FilePath, call: c})
		}
	}

	resolveOne := func(j job) (CallEdge, bool) {
		calleeFile, calleeQualified, confidence, ok := r.resolveCallee(j.file, j.call.CalleeName)
		if !ok {
			return CallEdge{}, false
		}
		return CallEdge{
			CallerName:          j.call.Caller,
			CallerFile:          j.file,
			CalleeName:          j.call.CalleeName,
			CalleeQualifiedName: calleeQualified,
			CalleeFile:          calleeFile,
			Span:                j.call.Span,
			Confidence:          minConfidence(j.call.Confidence, confidence),
		}, true
	}

	var edges []CallEdge
	seen := make(map[string]bool)
	add := func(e CallEdge) {
		key := e.CallerFile + "|" + e.CallerName + "->" + e.CalleeFile + "|" + e.CalleeName
		if !seen[key] {
			seen[key] = true
			edges = append(edges, e)
		}
	}

	if len(jobs) < parallelThreshold {
		for _, j := range jobs {
			if e, ok := resolveOne(j); ok {
				add(e)
			}
		}
		return edges
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > 8 {
		numWorkers = 8
	}
	jobCh := make(chan job, len(jobs))
	resultCh := make(chan CallEdge, len(jobs))
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if e, ok := resolveOne(j); ok {
					resultCh <- e
				}
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	go func() {
		wg.Wait()
		close(resultCh)
	}()
	for e := range resultCh {
		add(e)
	}
	return edges
}

// resolveCallee attempts to resolve one callee name, seen from
// callerFile, to the file and qualified name defining it. Qualified
// names ("alias.Name") are resolved via the caller file's import-alias
// map first; bare names are first looked up same-file, then globally.
func (r *HeuristicResolver) resolveCallee(callerFile, calleeName string) (file, qualifiedName string, confidence float64, ok bool) {
	name := calleeName
	if idx := strings.LastIndex(calleeName, "."); idx >= 0 {
		alias, rest := calleeName[:idx], calleeName[idx+1:]
		if importedName, ok := r.importsByFile[callerFile][alias]; ok {
			pkg := filepath.Base(importedName)
			for _, candFile := range r.filesByPackageName[pkg] {
				if def, found := findDefinition(r.definitionsByFile[candFile], rest); found {
					return candFile, def.QualifiedName, 0.9, true
				}
			}
		}
		name = rest
	}

	// Same-file resolution: highest confidence, no cross-package
	// ambiguity possible.
	if def, found := findDefinition(r.definitionsByFile[callerFile], name); found {
		return callerFile, def.QualifiedName, 0.95, true
	}

	// Same-package resolution.
	pkg := r.packageOf[callerFile]
	for _, cand := range r.definitionsByName[name] {
		if r.packageOf[cand.file] == pkg {
			return cand.file, cand.qualifiedName, 0.8, true
		}
	}

	// Global resolution: only safe when the name is unambiguous.
	candidates := r.definitionsByName[name]
	if len(candidates) == 1 {
		return candidates[0].file, candidates[0].qualifiedName, 0.5, true
	}
	return "", "", 0, false
}

func findDefinition(defs []langsupport.Definition, simple string) (langsupport.Definition, bool) {
	for _, d := range defs {
		if simpleName(d.QualifiedName) == simple || d.Name == simple {
			return d, true
		}
	}
	return langsupport.Definition{}, false
}

func minConfidence(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ResolveImports turns every file's raw Import records into
// ImportEdges, per spec §4.3's import-graph projection: grouped by
// (source_file, target_file), carrying the deduplicated symbol list
// and the minimum confidence observed across them.
func (r *HeuristicResolver) ResolveImports(graphs []*langsupport.HeuristicGraph) []ImportEdge {
	type key struct{ source, target string }
	grouped := make(map[key][]langsupport.Import)

	for _, g := range graphs {
		for _, imp := range g.Imports {
			target, ok := r.resolveImportTarget(imp.ImportedName)
			if !ok || target == g.FilePath {
				continue
			}
			k := key{source: g.FilePath, target: target}
			grouped[k] = append(grouped[k], imp)
		}
	}

	var edges []ImportEdge
	for k, imports := range grouped {
		symbols := make([]string, 0, len(imports))
		seen := make(map[string]bool)
		confidence := 1.0
		for _, imp := range imports {
			name := imp.ImportedName
			if !seen[name] {
				seen[name] = true
				symbols = append(symbols, name)
			}
			if imp.Confidence < confidence {
				confidence = imp.Confidence
			}
		}
		sort.Strings(symbols)
		edges = append(edges, ImportEdge{SourceFile: k.source, TargetFile: k.target, Symbols: symbols, Confidence: confidence})
	}
	return edges
}

// ResolveImportTarget maps a single imported name to an in-repo file
// path, for callers that need a single import's target_path rather
// than the grouped ImportEdge projection.
func (r *HeuristicResolver) ResolveImportTarget(importedName string) (string, bool) {
	return r.resolveImportTarget(importedName)
}

// resolveImportTarget maps an imported name to a file in the index by
// matching the last path component against a known package directory,
// the same fallback CallResolver.buildImportPathMapping applies for
// local packages.
func (r *HeuristicResolver) resolveImportTarget(importedName string) (string, bool) {
	pkg := filepath.Base(importedName)
	files, ok := r.filesByPackageName[pkg]
	if !ok || len(files) == 0 {
		return "", false
	}
	sort.Strings(files)
	return files[0], true
}

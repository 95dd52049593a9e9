package langsupport

import "path/filepath"

// Registry is the language lookup table, generalized from the
// original implementation's LanguageRegistry (mod.rs): one
// LanguageSupport per language id, an extension → id index, and a
// dependency-free fallback for anything else.
type Registry struct {
	byID  map[string]LanguageSupport
	byExt map[string]string
}

// NewRegistry builds the registry with every language spec.md names
// (Rust, Python, TypeScript, JavaScript, Go, Java) plus the fallback.
func NewRegistry() *Registry {
	r := &Registry{byID: map[string]LanguageSupport{}, byExt: map[string]string{}}
	r.register(newRustSupport())
	r.register(newPythonSupport())
	r.register(newTypeScriptSupport())
	r.register(newJavaScriptSupport())
	r.register(newGoSupport())
	r.register(newJavaSupport())
	return r
}

func (r *Registry) register(lang LanguageSupport) {
	r.byID[lang.ID()] = lang
	for _, ext := range lang.Extensions() {
		r.byExt[ext] = lang.ID()
	}
}

// ForFile returns the LanguageSupport registered for path's extension,
// or the dependency-free fallback with TierUnsupported if none claims
// it (spec §4.2's "PLAIN_TEXT/unknown extensions get Manifest/Unsupported
// tier instead of crashing the pipeline").
func (r *Registry) ForFile(path string) LanguageSupport {
	ext := extOf(path)
	if id, ok := r.byExt[ext]; ok {
		return r.byID[id]
	}
	return fallbackSupport{}
}

// Get looks up a language by id.
func (r *Registry) Get(id string) (LanguageSupport, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// IDs lists every registered language id (excluding the fallback).
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	return out
}

func extOf(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return ext
}

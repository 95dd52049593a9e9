package langsupport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoExtractsFunctionsTypesAndImports(t *testing.T) {
	source := []byte(`package sample

import (
	"fmt"
	alias "strings"
)

// Greeter greets people.
type Greeter struct {
	Name string
}

// Greet prints a greeting.
func (g *Greeter) Greet() {
	fmt.Println("hi " + g.Name)
}

func New(name string) *Greeter {
	return &Greeter{Name: name}
}
`)
	lang := newGoSupport()
	g, err := lang.Extract("sample.go", source)
	require.NoError(t, err)

	require.Len(t, g.Imports, 2)
	assert.Equal(t, "fmt", g.Imports[0].ImportedName)
	assert.Equal(t, "strings", g.Imports[1].ImportedName)
	assert.Equal(t, "alias", g.Imports[1].Alias)

	var typeDefs, fnDefs []Definition
	for _, d := range g.Definitions {
		if d.Kind == SymbolType {
			typeDefs = append(typeDefs, d)
		} else {
			fnDefs = append(fnDefs, d)
		}
	}
	require.Len(t, typeDefs, 1)
	assert.Equal(t, "Greeter", typeDefs[0].Name)
	require.NotNil(t, typeDefs[0].Doc)
	assert.Equal(t, DocGodoc, typeDefs[0].Doc.Style)

	require.Len(t, fnDefs, 2)
	assert.Equal(t, "Greeter.Greet", fnDefs[0].QualifiedName)
	assert.Equal(t, "New", fnDefs[1].QualifiedName)
}

func TestRegistryDetectsLanguageByExtension(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, "go", reg.ForFile("main.go").ID())
	assert.Equal(t, "python", reg.ForFile("script.py").ID())
	assert.Equal(t, "fallback", reg.ForFile("README.md").ID())
	assert.Equal(t, TierUnsupported, reg.ForFile("README.md").Tier())
}
